package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstEntry(t *testing.T, params any, key string) map[string]any {
	t.Helper()

	list, ok := params.(map[string]any)[key].([]any)
	require.True(t, ok)
	require.NotEmpty(t, list)

	return list[0].(map[string]any)
}

func TestCreateEvent_ZuluDates(t *testing.T) {
	req, err := newTestTranslator().Build("calendar", "createEvent", Fields{
		"eventSummary":  "Standup",
		"eventFolderId": "cal",
		"eventStart":    "2025-06-01T10:00:00+02:00",
		"eventEnd":      "2025-06-01T10:15:00+02:00",
		"eventAttendees": map[string]any{"attendees": []any{
			map[string]any{"email": "a@example.com", "role": "RoleOptionalAttendee", "isNotified": true},
		}},
		"eventAdditionalOptions": map[string]any{"reminder": map[string]any{"isSet": false}},
	})
	require.NoError(t, err)

	event := firstEntry(t, req.Params, "events")
	assert.Equal(t, "20250601T080000+0000", event["start"])
	assert.Equal(t, "20250601T081500+0000", event["end"])
	assert.Equal(t, "Normal", event["priority"])
	assert.Equal(t, "Busy", event["freeBusy"])
	assert.Equal(t, 0, event["watermark"])
	assert.Equal(t, map[string]any{"isSet": false, "minutesBeforeStart": 15, "type": "ReminderRelative"}, event["reminder"])
	assert.Equal(t, []any{map[string]any{
		"displayName":  "",
		"emailAddress": "a@example.com",
		"isNotified":   true,
		"role":         "RoleOptionalAttendee",
	}}, event["attendees"])
}

func TestCreateEvent_InvalidDate(t *testing.T) {
	_, err := newTestTranslator().Build("calendar", "createEvent", Fields{"eventStart": "soon", "eventEnd": "later"})
	assert.Error(t, err)
}

func TestGetCalendarEvents_PassesRangeThrough(t *testing.T) {
	req, err := newTestTranslator().Build("calendar", "getCalendarEvents", Fields{
		"calendarStart":    "20250601T000000+0000",
		"calendarEnd":      "20250701T000000+0000",
		"calendarFolderId": "cal",
	})
	require.NoError(t, err)

	p := req.Params.(map[string]any)
	query := p["query"].(map[string]any)
	assert.Equal(t, []string{"cal"}, p["folderIds"])
	assert.Equal(t, -1, query["limit"])
	assert.Equal(t, "And", query["combining"])
	assert.Len(t, query["fields"], 28)
	assert.Equal(t, []any{
		map[string]any{"fieldName": "start", "comparator": "GreaterEq", "value": "20250601T000000+0000"},
		map[string]any{"fieldName": "end", "comparator": "LessThan", "value": "20250701T000000+0000"},
	}, query["conditions"])
}

func TestCreateTask_LocalDates(t *testing.T) {
	req, err := newTestTranslator().Build("task", "createTask", Fields{
		"folderId":     "tasks",
		"taskTitle":    "Renew certificate",
		"taskDueDate":  "2025-06-01T10:00:00Z",
		"taskDone":     true,
		"taskReminder": map[string]any{"isSet": true, "reminderDate": "2025-05-31T09:00:00Z"},
	})
	require.NoError(t, err)

	task := firstEntry(t, req.Params, "tasks")
	assert.Equal(t, "20250601T110000+0100", task["due"])
	assert.Equal(t, 100, task["done"])
	assert.Equal(t, "", task["id"])
	assert.Equal(t, "tasks", task["folderId"])
	assert.Equal(t, 2147483647, task["sortOrder"])
	assert.Equal(t, map[string]any{"date": "20250531T100000+0100", "isSet": true, "type": "ReminderAbsolute"}, task["reminder"])
}

func TestEditTask_OmitsUnsetReminder(t *testing.T) {
	req, err := newTestTranslator().Build("task", "editTask", Fields{
		"taskId":       "t1",
		"taskTitle":    "Renew certificate",
		"taskReminder": map[string]any{"isSet": true},
	})
	require.NoError(t, err)
	assert.Equal(t, 206, req.ID)

	task := firstEntry(t, req.Params, "tasks")
	assert.NotContains(t, task, "reminder")
	assert.NotContains(t, task, "sortOrder")
	assert.Equal(t, "", task["due"])
	assert.Equal(t, 0, task["done"])
	assert.Equal(t, "t1", task["id"])
}

func TestUpdateTask_ZuluDates(t *testing.T) {
	req, err := newTestTranslator().Build("task", "updateTask", Fields{
		"taskId":       "t1",
		"taskTitle":    "Renew certificate",
		"taskDueDate":  "2025-06-01T10:00:00+02:00",
		"taskReminder": map[string]any{"isSet": true, "reminderDate": "2025-05-31T09:00:00Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, 18, req.ID)

	task := firstEntry(t, req.Params, "tasks")
	assert.Equal(t, "20250601T080000+0000", task["dueDate"])
	assert.Equal(t, "ctTask", task["type"])
	assert.Equal(t, map[string]any{"isSet": true, "reminderDate": "20250531T090000+0000"}, task["reminder"])
}

func TestEditNote_ModifyDateUsesClock(t *testing.T) {
	req, err := newTestTranslator().Build("notes", "editNote", Fields{
		"noteId":       "n1",
		"noteTitle":    "Groceries",
		"noteFolderId": "notes",
	})
	require.NoError(t, err)

	note := firstEntry(t, req.Params, "notes")
	assert.Equal(t, "20250304T060607+0100", note["modifyDate"])
	assert.Equal(t, "Groceries", note["text"])
	assert.Equal(t, "Pink", note["color"])
	assert.Equal(t, map[string]any{"xOffset": 0, "xSize": 0, "yOffset": 0, "ySize": 0}, note["position"])
}

func TestCreateNote_PrefersContent(t *testing.T) {
	req, err := newTestTranslator().Build("notes", "createNote", Fields{
		"noteTitle":   "Title",
		"noteContent": "Body",
		"noteColor":   "Yellow",
	})
	require.NoError(t, err)

	note := firstEntry(t, req.Params, "notes")
	assert.Equal(t, "Body", note["text"])
	assert.Equal(t, "Yellow", note["color"])
	assert.Equal(t, map[string]any{}, note["position"])
}

func TestGetNotes_EmptyFolder(t *testing.T) {
	req, err := newTestTranslator().Build("notes", "getNotes", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, req.Params.(map[string]any)["folderIds"])
}
