package operations

func noteDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "notes",
			Operation:   "getNotes",
			Method:      "Notes.get",
			ID:          37,
			Description: "List notes of a folder",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"folderIds": folderIDs(f, "noteFolderId"),
					"query": map[string]any{
						"limit":   -1,
						"orderBy": newestFirst("createDate"),
						"start":   0,
					},
				}, nil
			},
		},
		{
			Resource:    "notes",
			Operation:   "createNote",
			Method:      "Notes.create",
			ID:          40,
			Description: "Create a note",
			params: func(_ *Translator, f Fields) (any, error) {
				note := map[string]any{
					"text":     noteText(f),
					"position": map[string]any{},
					"folderId": f.String("noteFolderId"),
					"color":    f.StringOr("noteColor", "Pink"),
				}

				return map[string]any{"notes": []any{note}}, nil
			},
		},
		{
			Resource:    "notes",
			Operation:   "editNote",
			Method:      "Notes.set",
			ID:          19,
			Description: "Edit a note",
			params: func(t *Translator, f Fields) (any, error) {
				note := map[string]any{
					"color":      f.StringOr("noteColor", "Pink"),
					"folderId":   f.String("noteFolderId"),
					"id":         f.String("noteId"),
					"modifyDate": t.formatLocal(t.now()),
					"position": map[string]any{
						"xOffset": 0,
						"xSize":   0,
						"yOffset": 0,
						"ySize":   0,
					},
					"text":      noteText(f),
					"watermark": 0,
				}

				return map[string]any{"notes": []any{note}}, nil
			},
		},
		{
			Resource:    "notes",
			Operation:   "deleteNote",
			Method:      "Notes.remove",
			ID:          1,
			Description: "Delete a note",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{"ids": []string{f.String("noteId")}}, nil
			},
		},
	}
}

func noteText(f Fields) string {
	if content := f.String("noteContent"); content != "" {
		return content
	}

	return f.String("noteTitle")
}
