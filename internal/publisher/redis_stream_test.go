package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	args *redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = a
	return redis.NewStringResult("1700000000000-0", f.err)
}

func newTestPublisher(stream *fakeStream) *RedisStreamPublisher {
	p := newPublisher(stream, nil, log.New(io.Discard, "", 0))
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p
}

func TestPublishWinsLost(t *testing.T) {
	stream := &fakeStream{}
	p := newTestPublisher(stream)

	result := &model.Result{
		Season: 2025,
		Teams:  []model.TeamLoss{{Team: "BOS", WinsLost: 2.5}},
		Stints: []model.StintLoss{{Player: "x", Team: "BOS"}},
		Gaps:   []model.JoinGap{{Player: "ghost", GamesMissed: 3}},
	}

	id, err := p.PublishWinsLost(context.Background(), result)
	require.NoError(t, err)
	require.Equal(t, "1700000000000-0", id)

	require.Equal(t, "injuries.wins_lost.basketball_nba", stream.args.Stream)
	values := stream.args.Values.(map[string]interface{})
	require.Equal(t, 2025, values["season"])
	require.Equal(t, int64(1700000000), values["timestamp"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &decoded))
	require.Equal(t, float64(2025), decoded["season"])
	require.Len(t, decoded["teams"], 1)
	require.Len(t, decoded["join_gaps"], 1)
	require.NotContains(t, decoded, "stints")
}

func TestPublishWinsLostError(t *testing.T) {
	p := newTestPublisher(&fakeStream{err: errors.New("connection refused")})

	err := p.Write(context.Background(), &model.Result{Season: 2025})
	require.ErrorContains(t, err, "xadd injuries.wins_lost.basketball_nba")
	require.ErrorContains(t, err, "connection refused")
	require.NoError(t, p.Close())
}
