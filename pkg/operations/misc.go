package operations

const (
	getSettingsMethod = "Session.getSettings"
	setSettingsMethod = "Session.setSettings"
)

var (
	emailSettingKeys = []string{
		"mailSignature",
		"mailMarkAsRead",
		"mailMarkAsReadDelay",
		"mailImgAllowRemote",
		"emailPreviewPlace",
		"readReceipt",
		"deliveryReceipt",
		"pageSize",
		"selectFirstEmail",
	}

	webmailSettingKeys = []string{
		"lang",
		"timeZone",
		"timeFormat",
		"dateFormat",
		"langExtension",
		"firstWeekDay",
	}
)

func miscDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "misc",
			Operation:   "changePassword",
			Method:      "Session.setPassword",
			ID:          1,
			Description: "Change the account password",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"currentPassword": f.String("currpwd"),
					"newPassword":     f.String("newpwd"),
				}, nil
			},
		},
		{
			Resource:    "misc",
			Operation:   "changeWebmailColor",
			Method:      setSettingsMethod,
			ID:          32,
			Description: "Change the webmail color theme",
			params: func(_ *Translator, f Fields) (any, error) {
				return webmailSettings(map[string]any{"userStyle": f.StringOr("userStyle", "webmail2")}), nil
			},
		},
		{
			Resource:    "misc",
			Operation:   "getAccountDetails",
			Method:      "Session.whoAmI",
			ID:          7,
			Description: "Get details of the logged in account",
			params:      empty,
		},
		{
			Resource:    "misc",
			Operation:   "getAvailableLanguages",
			Method:      "Session.getAvailableLanguages",
			ID:          24,
			Description: "List webmail languages",
			params:      empty,
		},
		{
			Resource:    "misc",
			Operation:   "getAvailableTimezones",
			Method:      "Session.getAvailableTimeZones",
			ID:          23,
			Description: "List time zones",
			params:      empty,
		},
		{
			Resource:    "misc",
			Operation:   "getEmailSettings",
			Method:      getSettingsMethod,
			ID:          22,
			Description: "Get mail related webmail settings",
			params: func(_ *Translator, _ Fields) (any, error) {
				return settingsQuery(emailSettingKeys), nil
			},
		},
		{
			Resource:    "misc",
			Operation:   "getWebmailSettings",
			Method:      getSettingsMethod,
			ID:          25,
			Description: "Get locale related webmail settings",
			params: func(_ *Translator, _ Fields) (any, error) {
				return settingsQuery(webmailSettingKeys), nil
			},
		},
		{
			Resource:    "misc",
			Operation:   "setEmailSettings",
			Method:      setSettingsMethod,
			ID:          19,
			Description: "Update mail related webmail settings",
			params:      setEmailSettingsParams,
		},
		{
			Resource:    "misc",
			Operation:   "getQuota",
			Method:      "Session.getQuotaInformation",
			ID:          1,
			Description: "Get mailbox quota usage",
			params:      none,
		},
		{
			Resource:    "misc",
			Operation:   "getAlarm",
			Method:      "Alarms.get",
			ID:          11,
			Description: "Get alarms between two dates",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{
					"since": f["since"],
					"until": f["until"],
				}, nil
			},
		},
	}
}

func webmailSettings(settings map[string]any) map[string]any {
	return map[string]any{"settings": map[string]any{"webmail": settings}}
}

func settingsQuery(keys []string) map[string]any {
	query := make([]any, 0, len(keys))
	for _, k := range keys {
		query = append(query, []string{"webmail", k})
	}

	return map[string]any{"query": query}
}

// setEmailSettingsParams sends only the settings the caller supplied.
func setEmailSettingsParams(_ *Translator, f Fields) (any, error) {
	options := f.Map("additionalOptions")
	settings := map[string]any{}

	for _, k := range emailSettingKeys {
		if v, ok := options[k]; ok && v != nil {
			settings[k] = v
		}
	}

	return webmailSettings(settings), nil
}
