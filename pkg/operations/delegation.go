package operations

import (
	"context"
	"fmt"
	"maps"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

const (
	delegationGetMethod = "Delegation.get"
	delegationSetMethod = "Delegation.set"

	delegationGetID   = 31
	delegationWriteID = 21
)

func delegationDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "delegation",
			Operation:   "getActiveDelegation",
			Method:      delegationGetMethod,
			ID:          delegationGetID,
			Description: "List the delegates of the mailbox",
			params:      empty,
		},
		{
			Resource:    "delegation",
			Operation:   "removeAllDelegates",
			Method:      delegationSetMethod,
			ID:          49,
			Description: "Remove every delegate",
			params: func(_ *Translator, _ Fields) (any, error) {
				return map[string]any{"list": []any{}}, nil
			},
		},
		{
			Resource:    "delegation",
			Operation:   "usersForDelegation",
			Method:      "Principals.get",
			ID:          17,
			Description: "List principals available for delegation",
			params: func(_ *Translator, _ Fields) (any, error) {
				return map[string]any{"users": true, "groups": true, "domains": true}, nil
			},
		},
		{
			Resource:    "delegation",
			Operation:   "addDelegateUsers",
			Method:      delegationSetMethod,
			ID:          delegationWriteID,
			Description: "Add or overwrite delegates, keeping the others",
			run:         (*Translator).addDelegateUsers,
		},
		{
			Resource:    "delegation",
			Operation:   "removeSelectedDelegate",
			Method:      delegationSetMethod,
			ID:          delegationWriteID,
			Description: "Remove the given delegates, keeping the others",
			run:         (*Translator).removeSelectedDelegate,
		},
	}
}

// delegateID returns principal.id of a delegate entry.
func delegateID(entry any) string {
	delegate, _ := entry.(map[string]any)
	principal, _ := delegate["principal"].(map[string]any)
	id, _ := principal["id"].(string)

	return id
}

// fetchDelegates reads the current delegate list. Any failure aborts the
// enclosing read-merge-write before the write is sent.
func (t *Translator) fetchDelegates(ctx context.Context, session kerio.Session) ([]any, error) {
	reply, err := t.caller.Call(ctx, session, kerio.NewRequest(delegationGetID, delegationGetMethod, map[string]any{}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing delegates: %w", err)
	}

	list, _ := reply.ResultMap()["list"].([]any)

	return list, nil
}

// writeDelegates replaces the delegate list. The server applies it atomically
// and the last writer wins against concurrent editors.
func (t *Translator) writeDelegates(ctx context.Context, session kerio.Session, list []any) (map[string]any, error) {
	reply, err := t.caller.Call(ctx, session, kerio.NewRequest(delegationWriteID, delegationSetMethod, map[string]any{"list": list}))
	if err != nil {
		return nil, err
	}

	result := map[string]any{}
	maps.Copy(result, reply.ResultMap())

	return result, nil
}

// DelegateMerge is the outcome of merging new delegates into an existing list.
type DelegateMerge struct {
	List        []any
	Added       int
	Overwritten int
}

// MergeDelegates overwrites existing entries whose principal id matches an
// incoming entry, in place, and appends the rest. Only ids present in
// existing are matched, so repeated new ids are appended each time.
func MergeDelegates(existing, incoming []any) DelegateMerge {
	known := make(map[string]bool, len(existing))
	for _, entry := range existing {
		known[delegateID(entry)] = true
	}

	merged := DelegateMerge{List: make([]any, len(existing), len(existing)+len(incoming))}
	copy(merged.List, existing)

	for _, entry := range incoming {
		id := delegateID(entry)
		if !known[id] {
			merged.List = append(merged.List, entry)
			merged.Added++

			continue
		}

		for i, current := range merged.List {
			if delegateID(current) == id {
				merged.List[i] = entry
				merged.Overwritten++

				break
			}
		}
	}

	return merged
}

// RemoveDelegates returns existing without the entries whose principal id is in ids.
func RemoveDelegates(existing []any, ids []string) []any {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	kept := make([]any, 0, len(existing))

	for _, entry := range existing {
		if !remove[delegateID(entry)] {
			kept = append(kept, entry)
		}
	}

	return kept
}

func incomingDelegates(f Fields) []any {
	entries := f.Collection("delegateUsers", "delegate")
	delegates := make([]any, 0, len(entries))

	for _, d := range entries {
		delegates = append(delegates, map[string]any{
			"isInboxRW": d.BoolOr("isInboxRW", false),
			"principal": map[string]any{
				"displayName": d.String("displayName"),
				"id":          d.String("userId"),
				"mailAddress": d.String("mailAddress"),
			},
		})
	}

	return delegates
}

func (t *Translator) addDelegateUsers(ctx context.Context, session kerio.Session, f Fields) (any, error) {
	existing, err := t.fetchDelegates(ctx, session)
	if err != nil {
		return nil, err
	}

	merged := MergeDelegates(existing, incomingDelegates(f))

	result, err := t.writeDelegates(ctx, session, merged.List)
	if err != nil {
		return nil, err
	}

	t.logger.DebugContext(ctx, "Delegates merged",
		"added", merged.Added,
		"overwritten", merged.Overwritten,
		"total", len(merged.List))

	result["addedDelegates"] = merged.Added
	result["overwrittenDelegates"] = merged.Overwritten
	result["totalDelegates"] = len(merged.List)
	result["existingDelegates"] = len(existing)

	return result, nil
}

func (t *Translator) removeSelectedDelegate(ctx context.Context, session kerio.Session, f Fields) (any, error) {
	existing, err := t.fetchDelegates(ctx, session)
	if err != nil {
		return nil, err
	}

	entries := f.Collection("delegateIdsToRemove", "delegateId")
	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		ids = append(ids, entry.String("userId"))
	}

	kept := RemoveDelegates(existing, ids)

	result, err := t.writeDelegates(ctx, session, kept)
	if err != nil {
		return nil, err
	}

	result["removedDelegates"] = len(existing) - len(kept)
	result["totalDelegates"] = len(kept)
	result["existingDelegates"] = len(existing)

	return result, nil
}
