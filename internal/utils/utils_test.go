package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"hr.view", "crm.edit"}, ToStringSlice([]any{" hr.view ", 42, "", "crm.edit", nil}))
	require.Empty(t, ToStringSlice(nil))
}

func TestPointers(t *testing.T) {
	require.Equal(t, "", Value[string](nil))
	require.Equal(t, "at", Value(Ptr("at")))
}
