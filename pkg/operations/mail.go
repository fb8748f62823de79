package operations

import (
	"context"
	"fmt"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

var mailFields = []string{
	"id",
	"from",
	"to",
	"subject",
	"receiveDate",
	"modifiedDate",
	"sendDate",
	"isSeen",
	"isJunk",
	"isAnswered",
	"isForwarded",
	"isFlagged",
	"isReadOnly",
	"isDraft",
	"folderId",
	"hasAttachment",
	"priority",
	"size",
}

func newestFirst(column string) []any {
	return []any{
		map[string]any{
			"caseSensitive": true,
			"columnName":    column,
			"direction":     "Desc",
		},
	}
}

func mailDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "mails",
			Operation:   "getMails",
			Method:      "Mails.get",
			ID:          72,
			Description: "List the newest mails of a folder",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"folderIds": []string{f.String("mailFolderId")},
					"query": map[string]any{
						"fields":  mailFields,
						"limit":   f.Int("mailLimit", 10),
						"orderBy": newestFirst("receiveDate"),
						"start":   0,
					},
				}, nil
			},
		},
		{
			Resource:    "mails",
			Operation:   "setProperties",
			Method:      "Mails.set",
			ID:          139,
			Description: "Mark a mail read/unread or change its flag",
			params:      setMailPropertiesParams,
		},
		{
			Resource:    "mails",
			Operation:   "sendMail",
			Method:      "Mails.create",
			ID:          29,
			Description: "Compose and send a mail",
			params:      (*Translator).sendMailParams,
			post:        (*Translator).sendMailResult,
		},
		{
			Resource:    "mails",
			Operation:   "deleteMail",
			Method:      "Mails.move",
			ID:          61,
			Description: "Move mails to trash or delete them permanently",
			params:      deleteMailParams,
			route:       deleteMailRoute,
		},
		{
			Resource:    "mails",
			Operation:   "searchMail",
			Method:      "Mails.get",
			ID:          19,
			Description: "Full-text search within a folder",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"folderIds": []string{f.String("mailFolderIdRequired")},
					"query": map[string]any{
						"conditions": []any{
							map[string]any{
								"comparator": "Like",
								"fieldName":  "FULLTEXT",
								"value":      f.String("mailSearchQuery"),
							},
						},
						"fields":  mailFields,
						"limit":   50,
						"orderBy": newestFirst("receiveDate"),
						"start":   0,
					},
				}, nil
			},
		},
		{
			Resource:    "mails",
			Operation:   "uploadMailAttachment",
			Method:      kerio.UploadMethod,
			Description: "Upload binary data as a mail attachment",
			run:         (*Translator).uploadAttachment,
		},
		{
			Resource:    "mails",
			Operation:   "getMailById",
			Method:      "Mails.getById",
			ID:          101,
			Description: "Get one mail by id",
			params: func(_ *Translator, f Fields) (any, error) {
				mailID := f.String("mailIdForGet")
				if mailID == "" {
					return nil, kerio.NewValidationError("mailIdForGet", "Mail ID is required to retrieve a specific mail")
				}

				return map[string]any{"ids": []string{mailID}}, nil
			},
		},
	}
}

func setMailPropertiesParams(_ *Translator, f Fields) (any, error) {
	mail := map[string]any{"id": f.String("mailId")}

	switch f.StringOr("propertyType", "markReadUnread") {
	case "markReadUnread":
		mail["isSeen"] = f.BoolOr("isSeen", false)
	case "changeFlag":
		mail["isFlagged"] = f.BoolOr("isFlagged", false)
	}

	return map[string]any{"mails": []any{mail}}, nil
}

func deleteMailIDs(f Fields) []string {
	entries := f.Collection("mailIds", "ids")
	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		ids = append(ids, entry.String("id"))
	}

	return ids
}

func deleteMailRoute(f Fields) (string, int) {
	if f.String("deletionType") == "permanentDelete" {
		return "Mails.remove", 60
	}

	return "Mails.move", 61
}

func deleteMailParams(_ *Translator, f Fields) (any, error) {
	ids := deleteMailIDs(f)

	if f.String("deletionType") == "permanentDelete" {
		return map[string]any{"ids": ids}, nil
	}

	return map[string]any{
		"ids":                 ids,
		"destinationFolderId": f.String("trashFolderId"),
	}, nil
}

type recipient struct {
	Email string
	Name  string
}

func recipients(f Fields, key string) []recipient {
	entries := f.Collection(key, "recipients")
	list := make([]recipient, 0, len(entries))

	for _, entry := range entries {
		list = append(list, recipient{Email: entry.String("email"), Name: entry.String("name")})
	}

	return list
}

func formatRecipients(list []recipient) []any {
	formatted := make([]any, 0, len(list))
	for _, r := range list {
		formatted = append(formatted, map[string]any{"address": r.Email, "name": r.Name})
	}

	return formatted
}

func recipientEmails(list []recipient) []string {
	emails := make([]string, 0, len(list))
	for _, r := range list {
		emails = append(emails, r.Email)
	}

	return emails
}

func (t *Translator) validMailAddress(address string) bool {
	return t.validate.Var(address, "mailaddr") == nil
}

func (t *Translator) sendMailParams(f Fields) (any, error) {
	fromEmail := f.String("fromEmail")
	subject := f.String("subject")
	to := recipients(f, "to")
	cc := recipients(f, "cc")
	bcc := recipients(f, "bcc")
	replyTo := recipients(f, "replyTo")

	if fromEmail == "" || len(to) == 0 || subject == "" {
		return nil, kerio.NewValidationError("to", "From Email, To recipients, and Subject are required fields")
	}

	if !t.validMailAddress(fromEmail) {
		return nil, kerio.NewValidationError("fromEmail", fmt.Sprintf("Invalid From Email address: %s", fromEmail))
	}

	for _, group := range [][]recipient{to, cc, bcc, replyTo} {
		for _, r := range group {
			if !t.validMailAddress(r.Email) {
				return nil, kerio.NewValidationError("recipients", fmt.Sprintf("Invalid email address: %s", r.Email))
			}
		}
	}

	attachments := []any{}

	for _, entry := range f.Collection("attachments", "attachment") {
		id, name := entry.String("attachmentId"), entry.String("attachmentName")
		if id == "" || name == "" {
			return nil, kerio.NewValidationError("attachments", "Attachment ID and Attachment Name are required for attachments")
		}

		attachments = append(attachments, map[string]any{"id": id, "name": name})
	}

	options := f.Map("additionalOptions")

	headers := []any{}
	for _, h := range options.Collection("customHeaders", "header") {
		headers = append(headers, map[string]any{"name": h.String("name"), "value": h.String("value")})
	}

	contentType := "ctTextPlain"
	if f.StringOr("contentType", "html") == "html" {
		contentType = "ctTextHtml"
	}

	mail := map[string]any{
		"attachments": attachments,
		"bcc":         formatRecipients(bcc),
		"cc":          formatRecipients(cc),
		"displayableParts": []any{
			map[string]any{
				"content":     f.String("message"),
				"contentType": contentType,
				"encoding":    f.StringOr("messageEncoding", "utf8"),
			},
		},
		"encrypt": options.BoolOr("encrypt", false),
		"from": map[string]any{
			"address": fromEmail,
			"name":    f.String("fromName"),
		},
		"headers":        headers,
		"isAnswered":     false,
		"isDraft":        false,
		"isFlagged":      false,
		"isForwarded":    false,
		"isJunk":         false,
		"isMDNSent":      options.BoolOr("isMDNSent", true),
		"isReadOnly":     false,
		"isSeen":         true,
		"notificationTo": map[string]any{},
		"priority":       f.StringOr("priority", "Normal"),
		"replyTo":        formatRecipients(replyTo),
		"requestDSN":     options.BoolOr("requestDSN", false),
		"send":           true,
		"sender":         map[string]any{},
		"showExternal":   false,
		"sign":           options.BoolOr("sign", false),
		"subject":        subject,
		"to":             formatRecipients(to),
	}

	return map[string]any{"mails": []any{mail}}, nil
}

func (t *Translator) sendMailResult(f Fields, req kerio.Request, reply *kerio.Reply) (any, error) {
	var messageID any

	if list, ok := reply.ResultMap()["list"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			if id, ok := first["id"]; ok && id != "" {
				messageID = id
			}
		}
	}

	return map[string]any{
		"success":          true,
		"messageId":        messageID,
		"subject":          f.String("subject"),
		"from":             f.String("fromEmail"),
		"to":               recipientEmails(recipients(f, "to")),
		"cc":               recipientEmails(recipients(f, "cc")),
		"bcc":              recipientEmails(recipients(f, "bcc")),
		"attachmentsCount": len(f.Collection("attachments", "attachment")),
		"timestamp":        t.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"apiResponse":      reply.Result,
	}, nil
}

func (t *Translator) uploadAttachment(ctx context.Context, session kerio.Session, f Fields) (any, error) {
	property := f.StringOr("binaryPropertyName", "data")

	data, ok := f.Binary(property)
	if !ok {
		return nil, kerio.NewValidationError("binaryPropertyName", fmt.Sprintf("Binary property '%s' not found on input item", property))
	}

	reply, err := t.caller.Upload(ctx, session, kerio.Attachment{
		FileName:    f.String("fileName"),
		ContentType: f.StringOr("contentType", "application/octet-stream"),
		Description: f.String("contentDescription"),
		Data:        data,
	})
	if err != nil {
		return nil, err
	}

	return reply.Result, nil
}
