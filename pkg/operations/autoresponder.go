package operations

const outOfOfficeMethod = "Session.setOutOfOffice"

func autoresponderDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "autoresponder",
			Operation:   "getAutoResponder",
			Method:      "Session.getOutOfOffice",
			ID:          1,
			Description: "Get the out-of-office settings",
			params:      none,
		},
		{
			Resource:    "autoresponder",
			Operation:   "setAutoResponder",
			Method:      outOfOfficeMethod,
			ID:          2,
			Description: "Enable the autoresponder with a message",
			params: func(_ *Translator, f Fields) (any, error) {
				return outOfOffice(map[string]any{
					"isEnabled":          true,
					"text":               f.String("msg"),
					"isTimeRangeEnabled": false,
				}), nil
			},
		},
		{
			Resource:    "autoresponder",
			Operation:   "setTimedAutoResponder",
			Method:      outOfOfficeMethod,
			ID:          2,
			Description: "Enable the autoresponder for a time range",
			params: func(_ *Translator, f Fields) (any, error) {
				return outOfOffice(map[string]any{
					"isEnabled":          true,
					"text":               f.String("msg"),
					"isTimeRangeEnabled": true,
					"timeRangeStart":     f["startDateTime"],
					"timeRangeEnd":       f["endDateTime"],
				}), nil
			},
		},
		{
			Resource:    "autoresponder",
			Operation:   "disableAutoResponder",
			Method:      outOfOfficeMethod,
			ID:          2,
			Description: "Disable the autoresponder",
			params: func(_ *Translator, _ Fields) (any, error) {
				return outOfOffice(map[string]any{
					"isEnabled":          false,
					"isTimeRangeEnabled": false,
				}), nil
			},
		},
	}
}

func outOfOffice(settings map[string]any) map[string]any {
	return map[string]any{"settings": settings}
}
