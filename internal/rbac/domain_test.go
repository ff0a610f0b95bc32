package rbac

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionFromMethod(t *testing.T) {
	cases := []struct {
		method string
		action Action
		ok     bool
	}{
		{http.MethodGet, ActionRead, true},
		{http.MethodHead, ActionRead, true},
		{http.MethodOptions, ActionRead, true},
		{http.MethodPost, ActionCreate, true},
		{http.MethodPut, ActionUpdate, true},
		{http.MethodPatch, ActionUpdate, true},
		{http.MethodDelete, ActionDelete, true},
		{http.MethodConnect, "", false},
		{http.MethodTrace, "", false},
		{"BREW", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			action, ok := ActionFromMethod(tc.method)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.action, action)
		})
	}
}
