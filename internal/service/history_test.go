package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk-ai/backend/internal/model"
	"helpdesk-ai/backend/internal/service"
)

func TestFormatHistory(t *testing.T) {
	t.Run("Empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, service.FormatHistory(nil))
		assert.Empty(t, service.FormatHistory([]model.Message{}))
	})

	t.Run("Order is preserved and roles are normalized", func(t *testing.T) {
		messages := []model.Message{
			{Role: model.RoleUser, Content: "first"},
			{Role: model.RoleAssistant, Content: "second"},
			{Role: model.RoleUser, Content: "third"},
		}

		contents := service.FormatHistory(messages)
		require.Len(t, contents, 3)

		assert.Equal(t, "user", contents[0].Role)
		assert.Equal(t, "first", contents[0].Parts[0].Text)
		assert.Equal(t, "model", contents[1].Role)
		assert.Equal(t, "second", contents[1].Parts[0].Text)
		assert.Equal(t, "user", contents[2].Role)
		assert.Equal(t, "third", contents[2].Parts[0].Text)
	})

	t.Run("Formatting is idempotent in length", func(t *testing.T) {
		messages := make([]model.Message, 7)
		for i := range messages {
			messages[i] = model.Message{Role: model.RoleUser, Content: "m"}
		}
		assert.Len(t, service.FormatHistory(messages), len(messages))
	})
}
