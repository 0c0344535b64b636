package event

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Signer produces a Schnorr signature over a 32-byte digest. It holds a
// reference to the signing key, never the raw material; remote key
// holders (hardware, extension bridges) implement this interface.
type Signer interface {
	// PublicKey returns the signer's public key as 64 lowercase hex chars.
	PublicKey() string

	// Sign returns a 64-byte Schnorr signature over the digest.
	Sign(digest []byte) ([]byte, error)
}

// Hash computes the SHA-256 digest of the event's canonical serialization.
// Returns IncompleteEventError if the event cannot be canonicalized.
func Hash(ev *Event) ([32]byte, error) {
	canonical, err := Serialize(ev)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(canonical), nil
}

// ComputeID returns the event id: the canonical digest as lowercase hex.
func ComputeID(ev *Event) (string, error) {
	digest, err := Hash(ev)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest[:]), nil
}

// Sign populates PubKey, ID, and Sig using the given signer.
// The signer's public key overwrites any previously set PubKey so the
// digest is always computed over the key that actually signs.
func Sign(ev *Event, signer Signer) error {
	ev.PubKey = signer.PublicKey()
	if ev.Tags == nil {
		ev.Tags = Tags{}
	}

	digest, err := Hash(ev)
	if err != nil {
		return fmt.Errorf("hash event: %w", err)
	}

	sig, err := signer.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("sign event: %w", err)
	}
	if len(sig) != schnorr.SignatureSize {
		return fmt.Errorf("sign event: signer returned %d bytes, want %d", len(sig), schnorr.SignatureSize)
	}

	ev.ID = hex.EncodeToString(digest[:])
	ev.Sig = hex.EncodeToString(sig)
	return nil
}

// Verify checks that the event id matches the canonical digest and that
// the signature is a valid Schnorr signature over the id under pubkey.
//
// Verification failure is data, not an error: any malformed input, bad
// hex, or mismatched length returns false, never panics or errors.
func Verify(ev *Event) bool {
	if ev == nil {
		return false
	}

	digest, err := Hash(ev)
	if err != nil {
		return false
	}
	if ev.ID != hex.EncodeToString(digest[:]) {
		return false
	}

	sigBytes, err := hex.DecodeString(ev.Sig)
	if err != nil || len(sigBytes) != schnorr.SignatureSize {
		return false
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}

	pkBytes, err := hex.DecodeString(ev.PubKey)
	if err != nil || len(pkBytes) != 32 {
		return false
	}
	pk, err := schnorr.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}

	return sig.Verify(digest[:], pk)
}

// LocalSigner is a Signer backed by an in-process secp256k1 private key.
type LocalSigner struct {
	key *secp256k1.PrivateKey
}

// NewLocalSigner builds a LocalSigner from a 64-hex-char private key.
func NewLocalSigner(secHex string) (*LocalSigner, error) {
	b, err := hex.DecodeString(secHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("decode private key: got %d bytes, want 32", len(b))
	}
	return &LocalSigner{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PublicKey returns the x-only public key as lowercase hex.
func (s *LocalSigner) PublicKey() string {
	return hex.EncodeToString(schnorr.SerializePubKey(s.key.PubKey()))
}

// Sign returns the 64-byte Schnorr signature over the digest.
func (s *LocalSigner) Sign(digest []byte) ([]byte, error) {
	sig, err := schnorr.Sign(s.key, digest)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}
