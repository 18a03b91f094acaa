package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grader-content-api/internal/domain"
)

func TestDecodeFields_KeepsIntegers(t *testing.T) {
	fields, err := decodeFields(json.RawMessage(`{"order":2,"ratio":0.5,"big":1e3,"locked":false,"questions":[{"correctIndex":3}]}`))
	require.NoError(t, err)

	assert.Equal(t, int64(2), fields["order"])
	assert.Equal(t, 0.5, fields["ratio"])
	assert.Equal(t, 1000.0, fields["big"])
	assert.Equal(t, false, fields["locked"])

	questions := fields["questions"].([]interface{})
	assert.Equal(t, int64(3), questions[0].(map[string]interface{})["correctIndex"])
}

func TestDecodeFields_RejectsNonObjects(t *testing.T) {
	_, err := decodeFields(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
	_, err = decodeFields(json.RawMessage(`null`))
	assert.Error(t, err)
}

func TestOpen_RequiresCredentials(t *testing.T) {
	_, err := Open(context.Background(), "grader", "", false)
	assert.Error(t, err)
	_, err = Open(context.Background(), "", "key.json", false)
	assert.Error(t, err)
}

// Runs against the Firestore emulator when FIRESTORE_EMULATOR_HOST is set.
func TestDocumentStore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, "grader-test", "", true)
	require.NoError(t, err)
	defer store.Close()

	quizzes := domain.QuizzesPath("5", "math", "basics")
	require.NoError(t, store.Set(ctx, quizzes.Doc("quiz2"), json.RawMessage(`{"name":"B","duration":15}`)))
	require.NoError(t, store.Set(ctx, quizzes.Doc("quiz1"), json.RawMessage(`{"name":"A","duration":15}`)))

	docs, err := store.List(ctx, quizzes)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "quiz1", docs[0].ID)
	assert.JSONEq(t, `{"name":"A","duration":15}`, string(docs[0].Data))

	_, err = store.Get(ctx, quizzes.Doc("missing"))
	assert.True(t, errors.Is(err, domain.ErrDocumentNotFound))
}
