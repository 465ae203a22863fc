package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCarrier(t *testing.T) {
	tests := []struct {
		in   string
		want Carrier
	}{
		{"", CarrierUDP},
		{"udp", CarrierUDP},
		{" TCP ", CarrierTCP},
		{"Quic", CarrierQUIC},
	}
	for _, tt := range tests {
		got, err := ParseCarrier(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseCarrier("sctp")
	assert.ErrorIs(t, err, ErrUnknownCarrier)
	t.Log("✅ 载体解析大小写不敏感，空值为 udp")
}

func TestSecurityMode(t *testing.T) {
	for _, m := range []SecurityMode{SecurityModePSK, SecurityModeRPK, SecurityModeX509, SecurityModeNoSec} {
		got, err := ParseSecurityMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseSecurityMode("none")
	require.NoError(t, err)
	assert.Equal(t, SecurityModeNoSec, got)

	_, err = ParseSecurityMode("oscore")
	assert.Error(t, err)
	assert.Equal(t, "SecurityMode(9)", SecurityMode(9).String())
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "server", RoleServer.String())
	assert.Equal(t, "client", RoleClient.String())
	assert.Equal(t, "unknown", Role(7).String())

	assert.Equal(t, "unsecure", AuthUnsecured.String())
	assert.Equal(t, "psk", AuthPSK.String())
	assert.Equal(t, "rpk", AuthRPK.String())
	assert.Equal(t, "x509", AuthX509.String())
	assert.Equal(t, "unknown", AuthKind(9).String())
}

func TestObjectSet_Has(t *testing.T) {
	var nilSet *ObjectSet
	assert.False(t, nilSet.Has(SecurityObjectID))

	def := DefaultClientObjects()
	assert.True(t, def.Has(SecurityObjectID))
	assert.True(t, def.Has(ServerObjectID))
	assert.True(t, def.Has(DeviceObjectID))
	assert.False(t, def.Has(ObjectID(5)))
	assert.Equal(t, DefaultShortServerID, def.Security[0].ShortServerID)

	empty := &ObjectSet{}
	assert.False(t, empty.Has(SecurityObjectID))
}

func TestDefaultClientObjectsFor(t *testing.T) {
	assert.Equal(t, "coap://localhost:5683", DefaultClientObjects().Security[0].ServerURI)
	assert.Equal(t, "coap+tcp://localhost:5683", DefaultClientObjectsFor("coap+tcp").Security[0].ServerURI)
	assert.Equal(t, "coap://localhost:5683", DefaultClientObjectsFor("").Security[0].ServerURI)
}
