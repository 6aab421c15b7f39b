package route_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Run("should accept relation and operational statuses", func(t *testing.T) {
		for _, raw := range []string{"unassigned", "assigned", "in_progress", "completed", "on_hold2"} {
			t.Run(raw, func(t *testing.T) {
				s, err := route.ParseStatus(raw)

				require.NoError(t, err)
				assert.Equal(t, raw, s.String())
			})
		}
	})

	t.Run("should reject malformed tokens", func(t *testing.T) {
		for _, raw := range []string{"", "Assigned", "in progress", "_x", "9lives"} {
			t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
				_, err := route.ParseStatus(raw)

				require.Error(t, err)
				assert.IsType(t, &errs.ValueIsInvalidError{}, err)
			})
		}
	})
}

func TestStatus_IsOperational(t *testing.T) {
	assert.False(t, route.Assigned.IsOperational())
	assert.False(t, route.Unassigned.IsOperational())
	assert.True(t, route.Status("completed").IsOperational())
}

func TestStatus_Transition(t *testing.T) {
	testCases := []struct {
		name      string
		from      route.Status
		to        route.Status
		hasDriver bool
		wantErr   bool
	}{
		{"unassigned to operational", route.Unassigned, "completed", false, false},
		{"assigned to operational keeps driver", route.Assigned, "in_progress", true, false},
		{"operational to assigned with driver", "in_progress", route.Assigned, true, false},
		{"operational to assigned without driver", "in_progress", route.Assigned, false, true},
		{"assigned to unassigned with driver", route.Assigned, route.Unassigned, true, true},
		{"operational to unassigned without driver", "cancelled", route.Unassigned, false, false},
		{"invalid target", route.Unassigned, "BAD", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.from.Transition(tc.to, tc.hasDriver)

			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, got)
		})
	}
}
