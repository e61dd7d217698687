package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/model"
)

func buildHistory(n int) []model.Message {
	msgs := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, model.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			Role:      model.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: time.Now(),
			Attachments: []model.Attachment{
				{Name: "pic.png", MimeType: "image/png", Data: "aGVsbG8="},
			},
			ImageResult: "data:image/png;base64,aGVsbG8=",
		})
	}
	return msgs
}

func TestDegradeFullIsIdentity(t *testing.T) {
	in := model.Histories{model.ModeStandard: buildHistory(8)}
	out := Degrade(TierFull, in)

	assert.Equal(t, in, out)
}

func TestDegradeTruncateKeepsLastFive(t *testing.T) {
	in := model.Histories{
		model.ModeStandard: buildHistory(8),
		model.ModeFast:     buildHistory(3),
	}
	out := Degrade(TierTruncate, in)

	require.Len(t, out[model.ModeStandard], 5)
	assert.Equal(t, "msg-3", out[model.ModeStandard][0].ID)
	assert.Equal(t, "msg-7", out[model.ModeStandard][4].ID)
	// Timelines shorter than the cutoff are untouched.
	assert.Len(t, out[model.ModeFast], 3)
	// Binary payloads survive tier 1.
	assert.NotEmpty(t, out[model.ModeStandard][0].Attachments[0].Data)
	assert.NotEmpty(t, out[model.ModeStandard][0].ImageResult)
}

func TestDegradeStripRemovesBinaries(t *testing.T) {
	in := model.Histories{model.ModeImage: buildHistory(7)}
	out := Degrade(TierStrip, in)

	require.Len(t, out[model.ModeImage], 5)
	for _, msg := range out[model.ModeImage] {
		assert.Empty(t, msg.ImageResult)
		require.Len(t, msg.Attachments, 1)
		assert.Empty(t, msg.Attachments[0].Data)
		// Name and mime type survive so the UI can still label the slot.
		assert.Equal(t, "pic.png", msg.Attachments[0].Name)
		assert.Equal(t, "image/png", msg.Attachments[0].MimeType)
	}
}

func TestDegradeDoesNotMutateInput(t *testing.T) {
	in := model.Histories{model.ModeImage: buildHistory(7)}
	Degrade(TierStrip, in)

	assert.Len(t, in[model.ModeImage], 7)
	assert.NotEmpty(t, in[model.ModeImage][6].Attachments[0].Data)
	assert.NotEmpty(t, in[model.ModeImage][6].ImageResult)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "full", TierFull.String())
	assert.Equal(t, "truncate", TierTruncate.String())
	assert.Equal(t, "strip", TierStrip.String())
}
