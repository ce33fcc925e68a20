// internal/app/policy/interestpolicy/interestpolicy.go
package interestpolicy

import (
	"strings"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotInProfileMessage is returned when a post references an interest the
// author has not registered.
const NotInProfileMessage = "Some interests are not in user's interest list"

// ParseIDs converts request strings to ObjectIDs, dropping blanks and
// duplicates while keeping order.
func ParseIDs(raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]struct{}, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, apierr.ValidationFailed("interests", "Interests contains an invalid id")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// Missing returns the requested ids that are not in the user's set.
func Missing(userInterests, requested []primitive.ObjectID) []primitive.ObjectID {
	have := make(map[primitive.ObjectID]struct{}, len(userInterests))
	for _, id := range userInterests {
		have[id] = struct{}{}
	}
	var out []primitive.ObjectID
	for _, id := range requested {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Check fails when any requested interest is outside the user's set.
func Check(userInterests, requested []primitive.ObjectID) error {
	missing := Missing(userInterests, requested)
	if len(missing) == 0 {
		return nil
	}
	e := apierr.InvalidInterests(NotInProfileMessage)
	hex := make([]string, len(missing))
	for i, id := range missing {
		hex[i] = id.Hex()
	}
	e.Data = map[string]any{"invalid_interests": hex}
	return e
}
