// Package enrollment covers participant intake: code allocation, balanced
// group assignment and registration field validation.
package enrollment

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cfstudy/checklist-backend/pkg/types"
)

const codePrefix = "CF"

// NextCode computes the next participant code from the set of existing
// codes: max parsable numeric suffix + 1, zero-padded to three digits
// (longer suffixes simply keep their width). Malformed codes are ignored.
// Multi-writer deployments must not race this scan; the stores wrap it in an
// atomic sequence.
func NextCode(codes []string) string {
	max := 0
	for _, c := range codes {
		n, err := strconv.Atoi(strings.TrimPrefix(c, codePrefix))
		if err != nil || !strings.HasPrefix(c, codePrefix) {
			continue
		}
		if n > max {
			max = n
		}
	}
	return FormatCode(max + 1)
}

func FormatCode(n int) string {
	return fmt.Sprintf("%s%03d", codePrefix, n)
}

// ParseCodeNumber extracts the numeric suffix of a participant code.
func ParseCodeNumber(code string) (int, bool) {
	if !strings.HasPrefix(code, codePrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, codePrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// BalancedGroup picks the group with fewer members; ties break uniformly at
// random. Participants with unknown group labels do not count.
func BalancedGroup(participants []types.Participant) string {
	counts := map[string]int{
		types.GROUP_REVIEW:    0,
		types.GROUP_NO_REVIEW: 0,
	}
	for _, p := range participants {
		if _, ok := counts[p.Group]; ok {
			counts[p.Group]++
		}
	}

	min := -1
	for _, g := range types.ReviewGroups {
		if min < 0 || counts[g] < min {
			min = counts[g]
		}
	}
	candidates := []string{}
	for _, g := range types.ReviewGroups {
		if counts[g] == min {
			candidates = append(candidates, g)
		}
	}
	return candidates[rand.Intn(len(candidates))]
}

// ValidateRegistration checks the required intake fields and, when given, the
// group label. It runs before any store call; a failure means no mutation
// was attempted.
func ValidateRegistration(req types.ParticipantCreate) error {
	if strings.TrimSpace(req.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", types.ErrValidation)
	}
	if strings.TrimSpace(req.LastName) == "" {
		return fmt.Errorf("%w: last name is required", types.ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("%w: email is required", types.ErrValidation)
	}
	if req.Group != "" && req.Group != types.GROUP_REVIEW && req.Group != types.GROUP_NO_REVIEW {
		return fmt.Errorf("%w: unknown group %q", types.ErrValidation, req.Group)
	}
	return nil
}
