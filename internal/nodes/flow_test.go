package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"gentherapist/internal/config"
	"gentherapist/internal/core"
	"gentherapist/internal/engine"
	"gentherapist/internal/services"
	"gentherapist/internal/storage"
	"gentherapist/pkg"
	"gentherapist/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type failingStore struct {
	storage.SessionManager
	err error
}

func (f failingStore) GetHistory(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error) {
	return nil, f.err
}

type recordingResponder struct {
	gotText    string
	gotHistory []pkg.ConversationTurn
}

func (r *recordingResponder) GenerateResponse(text string, history []pkg.ConversationTurn) string {
	r.gotText = text
	r.gotHistory = history
	return "recorded"
}

type chatFixture struct {
	chat     *core.ChatService
	sessions *storage.MemorySessionManager
	know     *config.Knowledge
}

func newChatFixture(t *testing.T) chatFixture {
	t.Helper()
	k, err := config.DefaultKnowledge()
	require.NoError(t, err)

	sessions := storage.NewMemorySessionManager(time.Hour, 50)
	cfg := config.BuildCoreConfig(model.ConversationConfig{Backend: "memory"})
	processor, err := NewChatProcessor(cfg, engine.New(k, engine.WithRand(firstRand{})), services.NewTechniqueService(k), sessions)
	require.NoError(t, err)

	return chatFixture{
		chat:     core.NewChatService(processor, sessions),
		sessions: sessions,
		know:     k,
	}
}

func TestChatTurn(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	out, err := f.chat.Send(ctx, "s1", "  I feel so anxious about my exam  ")
	require.NoError(t, err)

	assert.Equal(t, "I hear that you're feeling anxious. That must be really challenging for you. "+
		"Exams can be very stressful. Remember, it's okay to feel nervous - that shows you care. "+
		"Let's try a quick grounding exercise. Can you name 5 things you can see right now?", out.Result.Reply)
	assert.Equal(t, pkg.IntentAnxiety, out.Result.Intent)
	assert.Equal(t, pkg.SentimentNegative, out.Result.Sentiment)
	assert.False(t, out.Result.IsCrisis)
	assert.Equal(t, "Anxiety Management Techniques", out.Result.Techniques.Title)
	assert.True(t, out.SessionUpdated)
	assert.Equal(t, []string{core.NodeAnalysis, core.NodeRouting, core.NodeResponse, core.NodeTechniques}, out.Metadata["execution_path"])

	history, err := f.chat.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []pkg.ConversationTurn{
		{Role: pkg.RoleUser, Content: "I feel so anxious about my exam", Sentiment: pkg.SentimentNegative},
		{Role: pkg.RoleAssistant, Content: out.Result.Reply, Sentiment: pkg.SentimentNeutral},
	}, history)
}

func TestChatTurnCrisis(t *testing.T) {
	f := newChatFixture(t)

	out, err := f.chat.Send(context.Background(), "s1", "I want to end my life")
	require.NoError(t, err)

	assert.Equal(t, f.know.Crisis().Response, out.Result.Reply)
	assert.True(t, out.Result.IsCrisis)
	assert.Equal(t, pkg.IntentGeneral, out.Result.Intent)
	assert.Equal(t, "General Wellness Techniques", out.Result.Techniques.Title)
}

func TestChatTurnGreeting(t *testing.T) {
	f := newChatFixture(t)

	out, err := f.chat.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)

	assert.Equal(t, pkg.IntentGreeting, out.Result.Intent)
	assert.Equal(t, f.know.Intents()[3].Responses[0], out.Result.Reply)
	assert.Equal(t, "General Wellness Techniques", out.Result.Techniques.Title)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := f.chat.Send(ctx, "s1", msg)
		assert.ErrorIs(t, err, core.ErrEmptyMessage)
	}

	history, err := f.chat.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatClear(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.chat.Send(ctx, "s1", "I am so sad")
	require.NoError(t, err)
	_, err = f.chat.Send(ctx, "s2", "hello")
	require.NoError(t, err)

	require.NoError(t, f.chat.Clear(ctx, "s1"))

	history, err := f.chat.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	other, err := f.chat.History(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, other, 2)
	assert.NoError(t, f.chat.Ping(ctx))
}

func TestChatStorageFailurePropagates(t *testing.T) {
	k, err := config.DefaultKnowledge()
	require.NoError(t, err)

	boom := errors.New("redis down")
	store := failingStore{SessionManager: storage.NewMemorySessionManager(time.Hour, 50), err: boom}
	cfg := config.BuildCoreConfig(model.ConversationConfig{})
	processor, err := NewChatProcessor(cfg, engine.New(k), services.NewTechniqueService(k), store)
	require.NoError(t, err)

	_, err = core.NewChatService(processor, store).Send(context.Background(), "s1", "hello")
	assert.ErrorIs(t, err, boom)
}

func TestRoutingNodePassesHistoryWithCurrentTurn(t *testing.T) {
	ctx := context.Background()
	sessions := storage.NewMemorySessionManager(time.Hour, 50)
	earlier := pkg.ConversationTurn{Role: pkg.RoleUser, Content: "earlier", Sentiment: pkg.SentimentNeutral}
	require.NoError(t, sessions.AppendTurns(ctx, "s1", earlier))

	routing := NewRoutingNode(sessions)
	out, err := routing.Execute(ctx, core.NodeInput{
		UserMessage: "now",
		SessionID:   "s1",
		Analysis:    &pkg.Analysis{Sentiment: pkg.SentimentPositive},
	})
	require.NoError(t, err)

	history := out.Data[core.DataHistory].([]pkg.ConversationTurn)
	require.Len(t, history, 2)
	assert.Equal(t, earlier, history[0])
	assert.Equal(t, pkg.ConversationTurn{Role: pkg.RoleUser, Content: "now", Sentiment: pkg.SentimentPositive}, history[1])

	responder := &recordingResponder{}
	resp := NewResponseNode(responder, sessions)
	respOut, err := resp.Execute(ctx, core.NodeInput{UserMessage: "now", SessionID: "s1", History: history})
	require.NoError(t, err)
	assert.Equal(t, "recorded", respOut.Data[core.DataReply])
	assert.Equal(t, "now", responder.gotText)
	assert.Equal(t, history, responder.gotHistory)

	stored, err := sessions.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.Equal(t, pkg.RoleAssistant, stored[2].Role)
}

func TestNodesRequireAnalysis(t *testing.T) {
	ctx := context.Background()
	sessions := storage.NewMemorySessionManager(time.Hour, 50)
	k, err := config.DefaultKnowledge()
	require.NoError(t, err)

	_, err = NewRoutingNode(sessions).Execute(ctx, core.NodeInput{UserMessage: "x", SessionID: "s1"})
	assert.Error(t, err)
	_, err = NewTechniquesNode(services.NewTechniqueService(k)).Execute(ctx, core.NodeInput{})
	assert.Error(t, err)
}
