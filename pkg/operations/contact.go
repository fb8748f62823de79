package operations

import (
	"github.com/dukex/operion-kerio/pkg/kerio"
)

const contactCacheMethod = "Contacts.getFromCache"

var (
	contactFields = []string{
		"id",
		"folderId",
		"watermark",
		"type",
		"commonName",
		"titleAfter",
		"titleBefore",
		"firstName",
		"middleName",
		"surName",
		"nickName",
		"emailAddresses",
		"phoneNumbers",
		"photo",
		"companyName",
	}

	contactTextOptions = []string{
		"middleName",
		"titleBefore",
		"titleAfter",
		"nickName",
		"departmentName",
		"profession",
		"managerName",
		"assistantName",
		"comment",
		"IMAddress",
	}

	postalOptions = []string{"street", "state", "locality", "zip", "country", "extendedAddress"}
)

func contactDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "contact",
			Operation:   "getContacts",
			Method:      contactCacheMethod,
			ID:          11,
			Description: "List contacts of a folder",
			params: func(_ *Translator, f Fields) (any, error) {
				return contactQuery(f, nil), nil
			},
		},
		{
			Resource:    "contact",
			Operation:   "addContact",
			Method:      "Contacts.create",
			ID:          18,
			Description: "Create a contact",
			params: func(t *Translator, f Fields) (any, error) {
				return t.contactParams(f, "folderId", f.String("folderIdRequired"))
			},
		},
		{
			Resource:    "contact",
			Operation:   "deleteContact",
			Method:      "Contacts.remove",
			ID:          1,
			Description: "Delete a contact",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{"ids": []string{f.String("contactId")}}, nil
			},
		},
		{
			Resource:    "contact",
			Operation:   "searchContact",
			Method:      contactCacheMethod,
			ID:          11,
			Description: "Quick-search contacts",
			params: func(_ *Translator, f Fields) (any, error) {
				return contactQuery(f, []any{
					map[string]any{
						"comparator": "Like",
						"fieldName":  "QUICKSEARCH",
						"value":      f.String("searchQuery"),
					},
				}), nil
			},
		},
		{
			Resource:    "contact",
			Operation:   "updateContact",
			Method:      "Contacts.set",
			ID:          18,
			Description: "Update a contact",
			params: func(t *Translator, f Fields) (any, error) {
				return t.contactParams(f, "id", f.String("contactId"))
			},
		},
	}
}

func folderIDs(f Fields, key string) []string {
	if id := f.String(key); id != "" {
		return []string{id}
	}

	return []string{}
}

func contactQuery(f Fields, conditions []any) map[string]any {
	query := map[string]any{
		"fields": contactFields,
		"limit":  25000,
		"start":  0,
	}

	if conditions != nil {
		query["conditions"] = conditions
	}

	return map[string]any{
		"folderIds": folderIDs(f, "folderId"),
		"query":     query,
	}
}

func anySet(f Fields, keys []string) bool {
	for _, k := range keys {
		if f.String(k) != "" {
			return true
		}
	}

	return false
}

func extension() map[string]any {
	return map[string]any{"label": "", "groupId": ""}
}

func (t *Translator) dayField(f Fields, key string) (string, error) {
	ts, ok, err := f.Time(key, t.location)
	if err != nil || !ok {
		return "", err
	}

	return kerio.FormatDay(ts), nil
}

// contactParams builds the full contact literal, keyed by idKey (folderId
// when creating, id when updating).
func (t *Translator) contactParams(f Fields, idKey, idValue string) (any, error) {
	options := f.Map("additionalOptions")

	birthDay, err := t.dayField(options, "birthDay")
	if err != nil {
		return nil, err
	}

	anniversary, err := t.dayField(options, "anniversary")
	if err != nil {
		return nil, err
	}

	phoneNumbers := []any{}
	if phone := f.String("phone"); phone != "" {
		phoneNumbers = append(phoneNumbers, map[string]any{
			"type":      "TypeMobile",
			"number":    phone,
			"extension": extension(),
		})
	}

	postalAddresses := []any{}
	if anySet(options, postalOptions) {
		postalAddresses = append(postalAddresses, map[string]any{
			"preferred":       false,
			"pobox":           "",
			"extendedAddress": options.String("extendedAddress"),
			"street":          options.String("street"),
			"locality":        options.String("locality"),
			"state":           options.String("state"),
			"zip":             options.String("zip"),
			"country":         options.String("country"),
			"label":           "",
			"type":            "AddressWork",
			"extension":       extension(),
		})
	}

	urls := []any{}
	if url := options.String("url"); url != "" {
		urls = append(urls, map[string]any{
			"type":      "UrlWork",
			"url":       url,
			"extension": extension(),
		})
	}

	contact := map[string]any{
		idKey:          idValue,
		"watermark":    0,
		"type":         "ctContact",
		"commonName":   f.String("commonName"),
		"firstName":    f.String("firstName"),
		"surName":      f.String("surName"),
		"phoneNumbers": phoneNumbers,
		"emailAddresses": []any{
			map[string]any{
				"address":            f.String("contactEmail"),
				"name":               "",
				"preferred":          false,
				"isValidCertificate": false,
				"type":               "EmailWork",
				"refId":              "",
				"extension":          extension(),
			},
		},
		"postalAddresses": postalAddresses,
		"urls":            urls,
		"birthDay":        birthDay,
		"anniversary":     anniversary,
		"companyName":     f.String("companyName"),
		"photo":           map[string]any{"id": "", "url": ""},
		"certSourceId":    "",
		"isGalContact":    false,
	}

	for _, k := range contactTextOptions {
		contact[k] = options.String(k)
	}

	return map[string]any{"contacts": []any{contact}}, nil
}
