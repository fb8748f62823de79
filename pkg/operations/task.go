package operations

import (
	"github.com/dukex/operion-kerio/pkg/kerio"
)

const (
	tasksSetMethod = "Tasks.set"

	// lastSortOrder places a new task at the end of the list.
	lastSortOrder = 2147483647
)

func taskDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "task",
			Operation:   "getTasks",
			Method:      "Tasks.get",
			ID:          11,
			Description: "List tasks of a folder",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"folderIds": folderIDs(f, "folderId"),
					"query": map[string]any{
						"limit": 500,
						"start": 0,
					},
				}, nil
			},
		},
		{
			Resource:    "task",
			Operation:   "createTask",
			Method:      "Tasks.create",
			ID:          177,
			Description: "Create a task",
			params: func(t *Translator, f Fields) (any, error) {
				task, err := t.taskData(f)
				if err != nil {
					return nil, err
				}

				task["folderId"] = f.String("folderId")
				task["id"] = ""
				task["sortOrder"] = lastSortOrder

				return map[string]any{"tasks": []any{task}}, nil
			},
		},
		{
			Resource:    "task",
			Operation:   "editTask",
			Method:      tasksSetMethod,
			ID:          206,
			Description: "Edit a task",
			params: func(t *Translator, f Fields) (any, error) {
				task, err := t.taskData(f)
				if err != nil {
					return nil, err
				}

				task["id"] = f.String("taskId")

				return map[string]any{"tasks": []any{task}}, nil
			},
		},
		{
			Resource:    "task",
			Operation:   "updateTask",
			Method:      tasksSetMethod,
			ID:          18,
			Description: "Update a task with a UTC due date",
			params:      (*Translator).updateTaskParams,
		},
		{
			Resource:    "task",
			Operation:   "deleteTask",
			Method:      "Tasks.remove",
			ID:          1,
			Description: "Delete a task",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{"ids": []string{f.String("taskId")}}, nil
			},
		},
	}
}

func doneValue(f Fields) int {
	if f.BoolOr("taskDone", false) {
		return 100
	}

	return 0
}

// taskData builds the fields shared by createTask and editTask, with dates
// in the local compact encoding.
func (t *Translator) taskData(f Fields) (map[string]any, error) {
	due, ok, err := f.Time("taskDueDate", t.location)
	if err != nil {
		return nil, err
	}

	dueValue := ""
	if ok {
		dueValue = t.formatLocal(due)
	}

	task := map[string]any{
		"description": f.String("taskDescription"),
		"done":        doneValue(f),
		"due":         dueValue,
		"summary":     f.String("taskTitle"),
	}

	reminder := f.Map("taskReminder")
	if reminder.BoolOr("isSet", false) {
		date, ok, err := reminder.Time("reminderDate", t.location)
		if err != nil {
			return nil, err
		}

		if ok {
			task["reminder"] = map[string]any{
				"date":  t.formatLocal(date),
				"isSet": true,
				"type":  "ReminderAbsolute",
			}
		}
	}

	return task, nil
}

func (t *Translator) updateTaskParams(f Fields) (any, error) {
	due, ok, err := f.Time("taskDueDate", t.location)
	if err != nil {
		return nil, err
	}

	dueValue := ""
	if ok {
		dueValue = kerio.FormatZulu(due)
	}

	reminderFields := f.Map("taskReminder")
	reminder := map[string]any{}

	if isSet, ok := reminderFields.Bool("isSet"); ok {
		reminder["isSet"] = isSet
	}

	date, ok, err := reminderFields.Time("reminderDate", t.location)
	if err != nil {
		return nil, err
	}

	if ok {
		reminder["reminderDate"] = kerio.FormatZulu(date)
	}

	task := map[string]any{
		"id":          f.String("taskId"),
		"watermark":   0,
		"type":        "ctTask",
		"summary":     f.String("taskTitle"),
		"description": f.String("taskDescription"),
		"dueDate":     dueValue,
		"done":        doneValue(f),
		"reminder":    reminder,
	}

	return map[string]any{"tasks": []any{task}}, nil
}
