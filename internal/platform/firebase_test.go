package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectFirebase_RequiresBucket(t *testing.T) {
	_, err := ConnectFirebase(context.Background(), FirebaseConfig{ProjectID: "p"}, nil)
	assert.Error(t, err)
}

func TestClose_NilSafe(t *testing.T) {
	var f *Firebase
	assert.NoError(t, f.Close())
	assert.NoError(t, (&Firebase{}).Close())
}
