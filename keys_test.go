package keycore

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnownVectorPrivateKeyOne(t *testing.T) {
	privBytes := make([]byte, PrivateKeySize)
	privBytes[31] = 1

	priv, err := ParsePrivateKey(privBytes)
	require.NoError(t, err)

	pub, err := DerivePublicKey(priv)
	require.NoError(t, err)

	want := "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	require.Equal(t, want, hex.EncodeToString(pub.SerializeCompressed()))
}

func TestValidatePrivateKeyBytes(t *testing.T) {
	t.Run("wrong length", func(t *testing.T) {
		require.ErrorIs(t, ValidatePrivateKeyBytes(make([]byte, 31)), ErrInvalidPrivateKey)
		require.ErrorIs(t, ValidatePrivateKeyBytes(make([]byte, 33)), ErrInvalidPrivateKey)
		require.ErrorIs(t, ValidatePrivateKeyBytes(nil), ErrInvalidPrivateKey)
	})

	t.Run("zero", func(t *testing.T) {
		require.ErrorIs(t, ValidatePrivateKeyBytes(make([]byte, 32)), ErrInvalidPrivateKey)
	})

	t.Run("order and above", func(t *testing.T) {
		order := groupOrderBytes(t)
		require.ErrorIs(t, ValidatePrivateKeyBytes(order), ErrInvalidPrivateKey)

		allFF := make([]byte, 32)
		for i := range allFF {
			allFF[i] = 0xff
		}
		require.ErrorIs(t, ValidatePrivateKeyBytes(allFF), ErrInvalidPrivateKey)
	})

	t.Run("order minus one is valid", func(t *testing.T) {
		nMinusOne := groupOrderBytes(t)
		nMinusOne[31]--
		require.NoError(t, ValidatePrivateKeyBytes(nMinusOne))
	})
}

func TestValidatePublicKeyBytes(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub, err := DerivePublicKey(priv)
	require.NoError(t, err)

	t.Run("valid encodings", func(t *testing.T) {
		require.NoError(t, ValidatePublicKeyBytes(pub.SerializeCompressed()))
		require.NoError(t, ValidatePublicKeyBytes(pub.SerializeUncompressed()))
	})

	t.Run("wrong length", func(t *testing.T) {
		require.ErrorIs(t, ValidatePublicKeyBytes(make([]byte, 34)), ErrInvalidPublicKey)
		require.ErrorIs(t, ValidatePublicKeyBytes(nil), ErrInvalidPublicKey)
	})

	t.Run("unrecognized prefix", func(t *testing.T) {
		bad := pub.SerializeCompressed()
		bad[0] = 0x05
		require.ErrorIs(t, ValidatePublicKeyBytes(bad), ErrInvalidPublicKey)

		badUncompressed := pub.SerializeUncompressed()
		badUncompressed[0] = 0x06
		require.ErrorIs(t, ValidatePublicKeyBytes(badUncompressed), ErrInvalidPublicKey)
	})

	t.Run("coordinates off the curve", func(t *testing.T) {
		// Corrupt the y coordinate: (y+1)^2 != x^3 + 7.
		bad := pub.SerializeUncompressed()
		bad[64] ^= 0x01
		require.ErrorIs(t, ValidatePublicKeyBytes(bad), ErrInvalidPublicKey)
	})
}

func TestParsePublicKeyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub, err := DerivePublicKey(priv)
	require.NoError(t, err)

	parsed, err := ParsePublicKey(pub.SerializeCompressed())
	require.NoError(t, err)
	require.True(t, pub.IsEqual(parsed))

	parsed, err = ParsePublicKey(pub.SerializeUncompressed())
	require.NoError(t, err)
	require.True(t, pub.IsEqual(parsed))
}

func TestDerivePublicKeyMatchesBackend(t *testing.T) {
	for i := 0; i < 8; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(t, err)

		pub, err := DerivePublicKey(priv)
		require.NoError(t, err)
		require.True(t, pub.IsEqual(priv.PubKey()))
	}
}

func TestPrivateKeyTweakAddIdentity(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	tweakKey, err := GeneratePrivateKey()
	require.NoError(t, err)
	tweak := tweakKey.Serialize()

	tweaked, err := PrivateKeyTweakAdd(priv, tweak)
	require.NoError(t, err)
	require.False(t, tweaked.Key.Equals(&priv.Key))

	// Adding the negated tweak must return the original key.
	negTweakKey, err := PrivateKeyNegate(tweakKey)
	require.NoError(t, err)
	restored, err := PrivateKeyTweakAdd(tweaked, negTweakKey.Serialize())
	require.NoError(t, err)
	require.True(t, restored.Key.Equals(&priv.Key))
}

func TestPrivateKeyTweakAddZeroResult(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	// key + (n - key) == 0 must be rejected.
	neg, err := PrivateKeyNegate(priv)
	require.NoError(t, err)
	_, err = PrivateKeyTweakAdd(priv, neg.Serialize())
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestPrivateKeyTweakMulRoundTrip(t *testing.T) {
	curve := testCurve(t)

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	tweakKey, err := GeneratePrivateKey()
	require.NoError(t, err)

	tweaked, err := PrivateKeyTweakMul(priv, tweakKey.Serialize())
	require.NoError(t, err)

	// Multiplying by the tweak's inverse must return the original key.
	tweakScalar, err := curve.ScalarFromBytes(tweakKey.Serialize())
	require.NoError(t, err)
	tweakInv, err := tweakScalar.Invert()
	require.NoError(t, err)

	restored, err := PrivateKeyTweakMul(tweaked, tweakInv.Bytes())
	require.NoError(t, err)
	require.True(t, restored.Key.Equals(&priv.Key))
}

func TestPrivateKeyTweakMulRejectsZeroTweak(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	_, err = PrivateKeyTweakMul(priv, make([]byte, 32))
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestPrivateKeyNegateTwice(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	neg, err := PrivateKeyNegate(priv)
	require.NoError(t, err)
	require.False(t, neg.Key.Equals(&priv.Key))

	restored, err := PrivateKeyNegate(neg)
	require.NoError(t, err)
	require.True(t, restored.Key.Equals(&priv.Key))
}

func TestPublicKeyTweakAddMatchesPrivateDerivation(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub, err := DerivePublicKey(priv)
	require.NoError(t, err)

	tweakKey, err := GeneratePrivateKey()
	require.NoError(t, err)
	tweak := tweakKey.Serialize()

	// Tweaking the public key must match deriving from the tweaked private
	// key: (priv + t)*G == pub + t*G.
	tweakedPriv, err := PrivateKeyTweakAdd(priv, tweak)
	require.NoError(t, err)
	wantPub, err := DerivePublicKey(tweakedPriv)
	require.NoError(t, err)

	gotPub, err := PublicKeyTweakAdd(pub, tweak)
	require.NoError(t, err)
	require.True(t, wantPub.IsEqual(gotPub))
}

func TestTweakRejectsOutOfRangeTweak(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub, err := DerivePublicKey(priv)
	require.NoError(t, err)

	order := groupOrderBytes(t)
	_, err = PrivateKeyTweakAdd(priv, order)
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
	_, err = PrivateKeyTweakMul(priv, order)
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
	_, err = PublicKeyTweakAdd(pub, order)
	require.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = PrivateKeyTweakAdd(priv, make([]byte, 16))
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}
