package rag_test

import (
	"context"
	"testing"

	"github.com/medassist-ai/medassist/mocks/mockllms"
	"github.com/medassist-ai/medassist/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// embed maps known texts to fixed unit vectors, so similarity is deterministic.
func embed(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		switch {
		case text == "blood pressure" || text == "Hypertension is high blood pressure.":
			out[i] = []float32{1, 0, 0}
		case text == "Asthma is a chronic airway disease.":
			out[i] = []float32{0, 1, 0}
		default:
			out[i] = []float32{0, 0, 1}
		}
	}
	return out
}

func Test_Store_IndexAndQuery(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mockllms.NewMockEmbedder(ctrl)
	mockEmbedder.EXPECT().CreateEmbedding(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, texts []string) ([][]float32, error) {
			return embed(texts), nil
		}).AnyTimes()

	st, err := rag.NewStore(mockEmbedder, nil)
	require.NoError(t, err)

	// empty collection returns nothing
	found, err := st.Query(context.Background(), "guidelines", "blood pressure", 2)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 0, st.Count("guidelines"))

	docs := []rag.Document{
		{
			ID:       "hypertension.md#0",
			Text:     "Hypertension is high blood pressure.",
			Metadata: map[string]string{"source": "hypertension.md", "title": "Hypertension"},
		},
		{
			ID:       "asthma.md#0",
			Text:     "Asthma is a chronic airway disease.",
			Metadata: map[string]string{"source": "asthma.md", "title": "Asthma"},
		},
	}
	require.NoError(t, st.Index(context.Background(), "guidelines", docs))
	assert.Equal(t, 2, st.Count("guidelines"))

	found, err = st.Query(context.Background(), "guidelines", "blood pressure", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "hypertension.md#0", found[0].ID)
	assert.Equal(t, "Hypertension", found[0].Metadata["title"])
	assert.InDelta(t, 1.0, found[0].Score, 0.001)

	// topK above the collection size is clamped
	found, err = st.Query(context.Background(), "guidelines", "blood pressure", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func Test_Store_EmbedderMismatch(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mockllms.NewMockEmbedder(ctrl)
	mockEmbedder.EXPECT().CreateEmbedding(gomock.Any(), gomock.Any()).Return([][]float32{}, nil).Times(1)

	st, err := rag.NewStore(mockEmbedder, nil)
	require.NoError(t, err)

	err = st.Index(context.Background(), "guidelines", []rag.Document{
		{ID: "d1", Text: "some text"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectors for 1 documents")
}

func Test_Store_Persistence(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEmbedder := mockllms.NewMockEmbedder(ctrl)
	mockEmbedder.EXPECT().CreateEmbedding(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, texts []string) ([][]float32, error) {
			return embed(texts), nil
		}).AnyTimes()

	dir := t.TempDir()
	cfg := &rag.StoreConfig{PersistPath: dir}

	st, err := rag.NewStore(mockEmbedder, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Index(context.Background(), "guidelines", []rag.Document{
		{ID: "d1", Text: "Hypertension is high blood pressure."},
	}))
	require.NoError(t, st.Close())

	// reopen from the same directory
	st2, err := rag.NewStore(mockEmbedder, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, st2.Count("guidelines"))
}
