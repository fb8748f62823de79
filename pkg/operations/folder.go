package operations

import (
	"fmt"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

var folderTypes = map[string]bool{
	"FMail":     true,
	"FCalendar": true,
	"FContact":  true,
	"FNote":     true,
	"FTask":     true,
	"FRoot":     true,
}

func folderDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "folder",
			Operation:   "getFolders",
			Method:      "Folders.get",
			ID:          5,
			Description: "List all folders of the user",
			params:      empty,
		},
		{
			Resource:    "folder",
			Operation:   "searchFolder",
			Method:      "Folders.get",
			ID:          9,
			Description: "List folders of one type",
			params:      empty,
			post:        filterFolders,
		},
		{
			Resource:    "folder",
			Operation:   "getPublicFolders",
			Method:      "Folders.getPublic",
			ID:          9,
			Description: "List public folders",
			params:      empty,
		},
		{
			Resource:    "folder",
			Operation:   "getSubscribedFolders",
			Method:      "Folders.getSubscribed",
			ID:          9,
			Description: "List subscribed folders",
			params:      empty,
		},
		{
			Resource:    "folder",
			Operation:   "createFolder",
			Method:      "Folders.create",
			ID:          21,
			Description: "Create a folder",
			params:      createFolderParams,
		},
		{
			Resource:    "folder",
			Operation:   "deleteFolder",
			Method:      "Folders.removeByType",
			ID:          19,
			Description: "Delete a folder",
			params: func(_ *Translator, f Fields) (any, error) {
				return map[string]any{"ids": []string{f.String("folderId")}}, nil
			},
		},
	}
}

func createFolderParams(_ *Translator, f Fields) (any, error) {
	folderType := f.StringOr("folderType", "FMail")
	if !folderTypes[folderType] {
		return nil, kerio.NewValidationError("folderType", fmt.Sprintf("Unsupported folder type: %s", folderType))
	}

	parentID := f.String("parentFolderId")
	if folderType == "FRoot" {
		parentID = ""
	}

	folder := map[string]any{
		"access":    "FAccessAdmin",
		"checked":   false,
		"color":     "",
		"id":        "",
		"name":      f.String("folderName"),
		"ownerName": "",
		"parentId":  parentID,
		"placeType": "FPlaceMailbox",
		"subType":   "FSubNone",
		"type":      folderType,
	}

	return map[string]any{"folders": []any{folder}}, nil
}

// filterFolders keeps only folders whose type equals folderType exactly.
func filterFolders(_ *Translator, f Fields, _ kerio.Request, reply *kerio.Reply) (any, error) {
	result := reply.ResultMap()

	list, ok := result["list"].([]any)
	if !ok {
		return reply.Result, nil
	}

	folderType := f.StringOr("folderType", "FMail")
	filtered := make([]any, 0, len(list))

	for _, entry := range list {
		folder, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		if t, _ := folder["type"].(string); t == folderType {
			filtered = append(filtered, folder)
		}
	}

	return map[string]any{
		"list":       filtered,
		"totalItems": len(filtered),
	}, nil
}
