package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"find","id":3,"data":"cam1"}`))
	require.NoError(t, err)
	assert.Equal(t, "find", env.Type)
	assert.Equal(t, uint64(3), env.ID)
	assert.JSONEq(t, `"cam1"`, string(env.Data))

	_, err = DecodeEnvelope([]byte(`{"data":1}`))
	assert.Error(t, err)
	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeEventNullPayload(t *testing.T) {
	f, err := EncodeEvent("full", 0, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"full","data":null}`, string(f))
}

func TestEncodeAck(t *testing.T) {
	body, err := json.Marshal(AckReply{Success: false, Message: "Failed"})
	require.NoError(t, err)
	f, err := EncodeAck(7, body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ack","id":7,"data":{"success":false,"message":"Failed"}}`, string(f))

	f, err = EncodeAck(8, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ack","id":8,"data":null}`, string(f))
}
