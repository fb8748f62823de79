package operations

import (
	"fmt"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

var occurrenceFields = []string{
	"id", "eventId", "folderId", "watermark", "access", "summary",
	"location", "description", "descriptionHtml", "label", "categories",
	"start", "end", "travelMinutes", "freeBusy", "isPrivate", "isAllDay",
	"priority", "rule", "attendees", "reminder", "isException",
	"hasReminder", "isRecurrent", "isCancelled", "seqNumber",
	"modification", "attachments",
}

func calendarDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "calendar",
			Operation:   "createEvent",
			Method:      "Events.create",
			ID:          46,
			Description: "Create a calendar event",
			params:      (*Translator).createEventParams,
			post: func(_ *Translator, _ Fields, req kerio.Request, reply *kerio.Reply) (any, error) {
				return map[string]any{
					"success":     true,
					"result":      reply.Result,
					"requestBody": req,
				}, nil
			},
		},
		{
			Resource:    "calendar",
			Operation:   "getCalendarEvents",
			Method:      "Occurrences.get",
			ID:          28,
			Description: "List event occurrences within a range",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"query": map[string]any{
						"fields":    occurrenceFields,
						"start":     0,
						"limit":     -1,
						"combining": "And",
						"conditions": []any{
							map[string]any{"fieldName": "start", "comparator": "GreaterEq", "value": f["calendarStart"]},
							map[string]any{"fieldName": "end", "comparator": "LessThan", "value": f["calendarEnd"]},
						},
					},
					"folderIds": []string{f.String("calendarFolderId")},
				}, nil
			},
		},
		{
			Resource:    "calendar",
			Operation:   "removeEvent",
			Method:      "Occurrences.remove",
			ID:          29,
			Description: "Remove an event occurrence",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"occurrences": []any{
						map[string]any{"id": f.String("eventId"), "modification": "modifyThis"},
					},
				}, nil
			},
		},
	}
}

func (t *Translator) zuluField(f Fields, key string) (string, error) {
	ts, ok, err := f.Time(key, t.location)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", kerio.NewValidationError(key, fmt.Sprintf("%s is required", key))
	}

	return kerio.FormatZulu(ts), nil
}

func (t *Translator) createEventParams(f Fields) (any, error) {
	start, err := t.zuluField(f, "eventStart")
	if err != nil {
		return nil, err
	}

	end, err := t.zuluField(f, "eventEnd")
	if err != nil {
		return nil, err
	}

	attendees := []any{}
	for _, a := range f.Collection("eventAttendees", "attendees") {
		attendees = append(attendees, map[string]any{
			"displayName":  a.String("displayName"),
			"emailAddress": a.String("email"),
			"isNotified":   a.BoolOr("isNotified", false),
			"role":         a.StringOr("role", "RoleRequiredAttendee"),
		})
	}

	options := f.Map("eventAdditionalOptions")
	reminder := options.Map("reminder")

	minutes := reminder.Int("minutesBeforeStart", 0)
	if minutes == 0 {
		minutes = 15
	}

	event := map[string]any{
		"summary":         f.String("eventSummary"),
		"start":           start,
		"end":             end,
		"folderId":        f.String("eventFolderId"),
		"watermark":       0,
		"attendees":       attendees,
		"description":     f.String("eventDescription"),
		"descriptionHtml": "",
		"location":        f.String("eventLocation"),
		"priority":        options.StringOr("eventPriority", "Normal"),
		"isAllDay":        options.BoolOr("isAllDay", false),
		"freeBusy":        options.StringOr("freeBusy", "Busy"),
		"isPrivate":       options.BoolOr("isPrivate", false),
		"travelMinutes":   options.Int("travelMinutes", 0),
		"reminder": map[string]any{
			"isSet":              reminder.BoolOr("isSet", true),
			"minutesBeforeStart": minutes,
			"type":               "ReminderRelative",
		},
	}

	return map[string]any{"events": []any{event}}, nil
}
