package services

import (
	"context"
	"fmt"
	"strings"

	"hoctap-backend/internal/models"
)

func NormalizeUnlockCondition(levelID string, ids []string) (models.IDList, error) {
	out := make(models.IDList, 0, len(ids))
	for _, raw := range ids {
		id, err := CanonicalID(raw)
		if err != nil {
			return nil, ErrValidation(MsgInvalidID, FieldError{Field: "unlockCondition", Message: fmt.Sprintf("%s: %q", MsgInvalidID, raw)})
		}
		if id == strings.ToLower(levelID) {
			return nil, ErrValidation(MsgUnlockSelf, FieldError{Field: "unlockCondition", Message: MsgUnlockSelf})
		}
		if out.Contains(id) {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func validateUnlockCondition(ctx context.Context, store ContentStore, levelID string, prereqs models.IDList) error {
	if len(prereqs) == 0 {
		return nil
	}
	existing, err := store.ExistingLevelIDs(ctx, prereqs)
	if err != nil {
		return err
	}
	found := map[string]bool{}
	for _, id := range existing {
		found[strings.ToLower(id)] = true
	}
	for _, id := range prereqs {
		if !found[id] {
			return ErrValidation(MsgUnlockUnknown, FieldError{Field: "unlockCondition", Message: MsgUnlockUnknown + ": " + id})
		}
	}

	edges, err := store.LevelEdges(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range edges {
		if strings.EqualFold(edges[i].ID, levelID) {
			edges[i].UnlockCondition = prereqs
			replaced = true
		}
	}
	if !replaced {
		edges = append(edges, models.LevelEdge{ID: levelID, UnlockCondition: prereqs})
	}
	if HasUnlockCycle(edges) {
		return ErrValidation(MsgUnlockCycle, FieldError{Field: "unlockCondition", Message: MsgUnlockCycle})
	}
	return nil
}

// HasUnlockCycle runs Kahn's algorithm over the prerequisite graph. References
// to levels outside edges are ignored.
func HasUnlockCycle(edges []models.LevelEdge) bool {
	deg := map[string]int{}
	out := map[string][]string{}
	for _, e := range edges {
		deg[strings.ToLower(e.ID)] = 0
	}
	for _, e := range edges {
		id := strings.ToLower(e.ID)
		for _, dep := range e.UnlockCondition {
			dep = strings.ToLower(dep)
			if _, ok := deg[dep]; !ok {
				continue
			}
			deg[id]++
			out[dep] = append(out[dep], id)
		}
	}

	queue := make([]string, 0, len(deg))
	for id, d := range deg {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, n := range out[id] {
			deg[n]--
			if deg[n] == 0 {
				queue = append(queue, n)
			}
		}
	}
	return visited != len(deg)
}

func MissingPrerequisites(prereqs models.IDList, completed []string) []string {
	done := map[string]bool{}
	for _, id := range completed {
		done[strings.ToLower(id)] = true
	}
	missing := []string{}
	for _, id := range prereqs {
		if !done[strings.ToLower(id)] {
			missing = append(missing, id)
		}
	}
	return missing
}
