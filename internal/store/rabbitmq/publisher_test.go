package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobMessageRoundTrip(t *testing.T) {
	body, err := EncodeJob("01JABCDEF")
	require.NoError(t, err)
	assert.JSONEq(t, `{"job_id":"01JABCDEF"}`, string(body))

	id, err := DecodeJob(body)
	require.NoError(t, err)
	assert.Equal(t, "01JABCDEF", id)
}

func TestDecodeJob_Rejects(t *testing.T) {
	for _, body := range []string{`not json`, `{}`, `{"job_id":""}`} {
		_, err := DecodeJob([]byte(body))
		assert.Error(t, err, body)
	}
	_, err := EncodeJob("")
	assert.Error(t, err)
}

func TestAttempt(t *testing.T) {
	assert.Equal(t, 0, Attempt(nil))
	assert.Equal(t, 2, Attempt(amqp.Table{attemptHeader: int32(2)}))
	assert.Equal(t, 3, Attempt(amqp.Table{attemptHeader: int64(3)}))
	assert.Equal(t, 0, Attempt(amqp.Table{attemptHeader: "x"}))
}

func TestQueueNames(t *testing.T) {
	assert.Equal(t, "analysis_jobs.retry", RetryQueue("analysis_jobs"))
	assert.Equal(t, "analysis_jobs.dlq", DeadLetterQueue("analysis_jobs"))
}
