package keycore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	ctx, err := NewContext(Secp256k1)
	require.NoError(t, err)
	require.NotNil(t, ctx.Curve())
	require.Equal(t, "secp256k1", ctx.Curve().Name())
}

func TestNewContextRejectsUnknownCurve(t *testing.T) {
	_, err := NewContext(CurveType("ed25519"))
	require.ErrorIs(t, err, ErrContextInitializationFailed)
}

func TestContextOperations(t *testing.T) {
	ctx, err := NewContext(Secp256k1)
	require.NoError(t, err)

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	require.NoError(t, ctx.ValidatePrivateKey(priv.Serialize()))

	pub, err := ctx.DerivePublicKey(priv)
	require.NoError(t, err)
	require.NoError(t, ctx.ValidatePublicKey(pub.SerializeCompressed()))

	hash := testHash(t, "context operations")
	sig, recid, err := ctx.SignRecoverable(priv, hash)
	require.NoError(t, err)

	valid, err := ctx.Verify(sig, hash, pub)
	require.NoError(t, err)
	require.True(t, valid)

	recovered, err := ctx.RecoverPublicKey(sig, recid, hash)
	require.NoError(t, err)
	require.True(t, pub.IsEqual(recovered))

	tweakKey, err := GeneratePrivateKey()
	require.NoError(t, err)
	tweak := tweakKey.Serialize()

	tweakedPriv, err := ctx.PrivateKeyTweakAdd(priv, tweak)
	require.NoError(t, err)
	tweakedPub, err := ctx.PublicKeyTweakAdd(pub, tweak)
	require.NoError(t, err)
	wantPub, err := ctx.DerivePublicKey(tweakedPriv)
	require.NoError(t, err)
	require.True(t, wantPub.IsEqual(tweakedPub))

	neg, err := ctx.PrivateKeyNegate(priv)
	require.NoError(t, err)
	back, err := ctx.PrivateKeyNegate(neg)
	require.NoError(t, err)
	require.True(t, back.Key.Equals(&priv.Key))

	_, err = ctx.PrivateKeyTweakMul(priv, make([]byte, 32))
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}
