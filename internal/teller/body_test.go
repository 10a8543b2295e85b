package teller

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBody(t *testing.T) {
	empty := parseBody([]byte("  \n"))
	require.True(t, empty.IsJSON())
	require.JSONEq(t, `{}`, string(empty.JSON))

	doc := parseBody([]byte(`{"message":"insufficient funds","code":42}`))
	require.True(t, doc.IsJSON())
	require.Equal(t, "insufficient funds", doc.Field("message"))
	require.Empty(t, doc.Field("code"))
	require.Empty(t, doc.Field("missing"))

	text := parseBody([]byte("upstream exploded"))
	require.False(t, text.IsJSON())
	require.Empty(t, text.Field("message"))
	out, err := json.Marshal(text)
	require.NoError(t, err)
	require.Equal(t, `"upstream exploded"`, string(out))
}

func TestAsFailure(t *testing.T) {
	require.Nil(t, AsFailure(nil))

	plain := AsFailure(errors.New("boom"))
	require.Equal(t, KindTransport, plain.Kind)

	wrapped := AsFailure(fmt.Errorf("wrap: %w", configurationError("bad")))
	require.Equal(t, KindConfiguration, wrapped.Kind)
	require.Equal(t, "bad", wrapped.Message)

	cause := errors.New("dial tcp: refused")
	f := transportError("Teller request failed", cause)
	require.ErrorIs(t, f, cause)
	require.Equal(t, "teller transport_error: Teller request failed: dial tcp: refused", f.Error())
	require.Equal(t, "unknown", Kind(99).String())
}
