package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestQuestionDocumentBSONOmitsUnsetPriority(t *testing.T) {
	data, err := bson.Marshal(QuestionDocument{QuestionID: "q1", Category: "language", TechName: "Go"})
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "priority")
	assert.Equal(t, "q1", raw["questionId"])
}

func TestQuestionDocumentBSONKeepsPriority(t *testing.T) {
	p := 3
	data, err := bson.Marshal(QuestionDocument{QuestionID: "q1", Priority: &p})
	require.NoError(t, err)

	var doc QuestionDocument
	require.NoError(t, bson.Unmarshal(data, &doc))
	require.NotNil(t, doc.Priority)
	assert.Equal(t, 3, *doc.Priority)
}
