// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openpgp

import (
	"bytes"
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"hash"
	"io"
	"strconv"

	"github.com/the-djmaze/openpgpjs/openpgp/errors"
	"github.com/the-djmaze/openpgpjs/openpgp/packet"
)

// MessageDetails contains the result of parsing an OpenPGP encrypted and/or
// signed message.
type MessageDetails struct {
	IsEncrypted              bool                // true if the message was encrypted.
	EncryptedToKeyIds        []uint64            // the list of recipient key ids.
	IsSymmetricallyEncrypted bool                // true if a passphrase could have decrypted the message.
	DecryptedWith            Key                 // the private key used to decrypt the message, if any.
	IsSigned                 bool                // true if the message is signed.
	SignedByKeyId            uint64              // the key id of the signer, if any.
	SignedBy                 *Key                // the key of the signer, if available.
	LiteralData              *packet.LiteralData // the metadata of the contents
	UnverifiedBody           io.Reader           // the contents of the message.

	// If IsSigned is true and SignedBy is non-zero then the signature will
	// be verified as UnverifiedBody is read. The signature cannot be
	// checked until the whole of UnverifiedBody is read so UnverifiedBody
	// must be consumed until EOF before the data can be trusted. Even if a
	// message isn't signed (or the signer is unknown) the data may contain
	// an authentication code that is only checked once UnverifiedBody has
	// been consumed. Once EOF has been seen, the following fields are
	// valid. (An authentication code failure is reported as a
	// SignatureError error when reading from UnverifiedBody.)
	//
	// With nested one-pass signatures, Signature and SignedBy describe the
	// innermost signature; a verification failure of any of the outer
	// signatures is still reported through SignatureError.
	Signature   *packet.Signature   // the signature packet itself.
	SignatureV3 *packet.SignatureV3 // the signature packet if it is a v2 or v3 signature
	SignatureError error            // nil if the signature is good.

	decrypted io.ReadCloser
}

// A PromptFunction is used as a callback by functions that may need to decrypt
// a private key, or prompt for a passphrase. It is called with a list of
// acceptable, encrypted private keys and a boolean that indicates whether a
// passphrase is usable. It should either decrypt a private key or return a
// passphrase to try. If the decrypted private key or given passphrase isn't
// correct, the function will be called again, forever. Any error returned will
// be passed up.
type PromptFunction func(keys []Key, symmetric bool) ([]byte, error)

// A keyEnvelopePair is used to store a private key with the envelope that
// contains a symmetric key, encrypted with that key.
type keyEnvelopePair struct {
	key          Key
	encryptedKey *packet.EncryptedKey
}

// ReadMessage parses an OpenPGP message that may be signed and/or encrypted.
// The given KeyRing should contain both public keys (for signature
// verification) and, possibly encrypted, private keys for decrypting.
// If config is nil, sensible defaults will be used.
func ReadMessage(r io.Reader, keyring KeyRing, prompt PromptFunction, config *packet.Config) (md *MessageDetails, err error) {
	var p packet.Packet

	var symKeys []*packet.SymmetricKeyEncrypted
	var pubKeys []keyEnvelopePair
	// Integrity protected encrypted packet: SymmetricallyEncrypted or AEADEncrypted
	var edp packet.EncryptedDataPacket

	packets := packet.NewReader(r)
	md = new(MessageDetails)
	md.IsEncrypted = false

	// The message, if encrypted, starts with a number of packets
	// containing an encrypted decryption key. The decryption key is either
	// encrypted to a public key, or with a passphrase. This loop
	// collects these packets.
ParsePackets:
	for {
		p, err = packets.Next()
		if err != nil {
			return nil, err
		}
		switch p := p.(type) {
		case *packet.SymmetricKeyEncrypted:
			// This packet contains the decryption key encrypted with a passphrase.
			md.IsSymmetricallyEncrypted = true
			symKeys = append(symKeys, p)
		case *packet.EncryptedKey:
			// This packet contains the decryption key encrypted to a public key.
			md.EncryptedToKeyIds = append(md.EncryptedToKeyIds, p.KeyId)
			switch p.Algo {
			case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSAEncryptOnly, packet.PubKeyAlgoElGamal, packet.PubKeyAlgoECDH:
				break
			default:
				continue
			}
			if keyring != nil {
				var keys []Key
				if p.KeyId == 0 {
					keys = keyring.DecryptionKeys()
				} else {
					keys = keyring.KeysById(p.KeyId)
				}
				for _, k := range keys {
					pubKeys = append(pubKeys, keyEnvelopePair{k, p})
				}
			}
		case *packet.SymmetricallyEncrypted:
			if !p.IntegrityProtected && !config.AllowUnauthenticatedMessages() {
				return nil, errors.UnsupportedError("message is not integrity protected")
			}
			edp = p
			break ParsePackets
		case *packet.AEADEncrypted:
			edp = p
			break ParsePackets
		case *packet.Compressed, *packet.LiteralData, *packet.OnePassSignature:
			// This message isn't encrypted.
			if len(symKeys) != 0 || len(pubKeys) != 0 {
				return nil, errors.StructuralError("key material not followed by encrypted message")
			}
			packets.Unread(p)
			return readSignedMessage(packets, nil, keyring, config)
		}
	}

	md.IsEncrypted = true

	var candidates []Key
	var decrypted io.ReadCloser

	// Try the key passed in the callback for the private keys first
	for len(candidates) > 0 || len(symKeys) > 0 || len(pubKeys) > 0 {
		candidates = candidates[:0]
		candidateFingerprints := make(map[string]bool)

		for _, pk := range pubKeys {
			if pk.key.PrivateKey == nil {
				continue
			}
			if !pk.key.PrivateKey.Encrypted {
				if !pk.key.PublicKey.PubKeyAlgo.CanEncrypt() {
					continue
				}
				if pk.key.SelfSignature != nil && pk.key.SelfSignature.FlagsValid &&
					!pk.key.SelfSignature.FlagEncryptCommunications && !pk.key.SelfSignature.FlagEncryptStorage &&
					!config.AllowDecryptionWithSigningKeys() {
					continue
				}
				if len(pk.encryptedKey.Key) == 0 {
					errDec := pk.encryptedKey.Decrypt(pk.key.PrivateKey, config)
					if errDec != nil {
						continue
					}
				}
				// Try to decrypt symmetrically encrypted
				decrypted, err = edp.Decrypt(pk.encryptedKey.CipherFunc, pk.encryptedKey.Key)
				if err != nil && err != errors.ErrKeyIncorrect {
					return nil, err
				}
				if decrypted != nil {
					md.DecryptedWith = pk.key
					break
				}
			} else {
				fpr := string(pk.key.PublicKey.Fingerprint[:])
				if v := candidateFingerprints[fpr]; v {
					continue
				}
				candidates = append(candidates, pk.key)
				candidateFingerprints[fpr] = true
			}
		}

		if decrypted != nil {
			break
		}

		if len(candidates) == 0 && len(symKeys) == 0 {
			return nil, errors.ErrKeyIncorrect
		}

		if prompt == nil {
			return nil, errors.ErrKeyIncorrect
		}

		passphrase, err := prompt(candidates, len(symKeys) != 0)
		if err != nil {
			return nil, err
		}

		// Try the symmetric keys
		if len(symKeys) != 0 && passphrase != nil {
			for _, s := range symKeys {
				key, cipherFunc, err := s.Decrypt(passphrase)
				// In v4, on wrong passphrase, session key decryption is very likely to result in an invalid cipherFunc:
				// only for < 5% of cases we will proceed to decrypt the data
				if err == nil {
					decrypted, err = edp.Decrypt(cipherFunc, key)
					if err != nil && err != errors.ErrKeyIncorrect {
						return nil, err
					}
					if decrypted != nil {
						break
					}
				}
			}
		}
	}

	md.decrypted = decrypted
	if err := packets.Push(decrypted); err != nil {
		return nil, err
	}
	mdFinal, sensitiveParsingErr := readSignedMessage(packets, md, keyring, config)
	if sensitiveParsingErr != nil {
		return nil, errors.StructuralError("parsing error")
	}
	return mdFinal, nil
}

// pendingSignature holds the state for one One-Pass-Signature packet that
// still awaits its trailing Signature packet: the running hash contexts and,
// if available, the signer's key.
type pendingSignature struct {
	op             *packet.OnePassSignature
	h, wrappedHash hash.Hash
	signedBy       *Key
	hashError      error
}

// readSignedMessage reads a possibly signed message if mdin is non-zero then
// that structure is updated and returned. Otherwise a fresh MessageDetails is
// used.
func readSignedMessage(packets *packet.Reader, mdin *MessageDetails, keyring KeyRing, config *packet.Config) (md *MessageDetails, err error) {
	if mdin == nil {
		mdin = new(MessageDetails)
	}
	md = mdin

	var p packet.Packet
	var pending []*pendingSignature
	var prevLast bool
FindLiteralData:
	for {
		p, err = packets.Next()
		if err != nil {
			return nil, err
		}
		switch p := p.(type) {
		case *packet.Compressed:
			if err := packets.Push(p.Body); err != nil {
				return nil, err
			}
		case *packet.OnePassSignature:
			// One-pass signatures nest: each packet pushes a pending
			// verification, and the trailing Signature packets close
			// them in reverse order. The packet marked as last must
			// be the one closest to the literal data.
			if prevLast {
				return nil, errors.StructuralError("one-pass signature packet after the final one-pass signature")
			}

			if p.IsLast {
				prevLast = true
			}

			sigState := &pendingSignature{op: p}
			sigState.h, sigState.wrappedHash, sigState.hashError = hashForSignature(p.Hash, p.SigType)
			if keyring != nil {
				keys := keyring.KeysByIdUsage(p.KeyId, packet.KeyFlagSign)
				if len(keys) > 0 {
					sigState.signedBy = &keys[0]
				}
			}
			pending = append(pending, sigState)

			md.IsSigned = true
			md.SignedByKeyId = p.KeyId
			md.SignedBy = sigState.signedBy
		case *packet.LiteralData:
			md.LiteralData = p
			break FindLiteralData
		}
	}

	if len(pending) > 0 {
		md.UnverifiedBody = &signatureCheckReader{packets, pending, md, config}
	} else if md.decrypted != nil {
		md.UnverifiedBody = checkReader{md}
	} else {
		md.UnverifiedBody = md.LiteralData.Body
	}

	return md, nil
}

// hashForSignature returns a pair of hashes that can be used to verify a
// signature. The signature may specify that the contents of the signed message
// should be preprocessed (i.e. to normalize line endings). Thus this function
// returns two hashes. The second should be used to hash the message itself and
// performs any needed preprocessing.
func hashForSignature(hashFunc crypto.Hash, sigType packet.SignatureType) (hash.Hash, hash.Hash, error) {
	if !hashFunc.Available() {
		return nil, nil, errors.UnsupportedError("hash not available: " + strconv.Itoa(int(hashFunc)))
	}
	h := hashFunc.New()

	switch sigType {
	case packet.SigTypeBinary:
		return h, h, nil
	case packet.SigTypeText:
		return h, NewCanonicalTextHash(h), nil
	}

	return nil, nil, errors.UnsupportedError("unsupported signature type: " + strconv.Itoa(int(sigType)))
}

// checkReader wraps an io.Reader from a LiteralData packet. When it sees EOF
// it closes the ReadCloser from any SymmetricallyEncrypted packet to trigger
// MDC checks.
type checkReader struct {
	md *MessageDetails
}

func (cr checkReader) Read(buf []byte) (n int, err error) {
	n, err = cr.md.LiteralData.Body.Read(buf)
	if err == io.EOF {
		mdcErr := cr.md.decrypted.Close()
		if mdcErr != nil {
			err = mdcErr
		}
	}
	return
}

// signatureCheckReader wraps an io.Reader from a LiteralData packet and hashes
// the data as it is read. When it sees an EOF from the underlying io.Reader it
// parses the trailing Signature packets, matching them against the pending
// one-pass signatures in reverse order, and triggers any MDC checks.
type signatureCheckReader struct {
	packets *packet.Reader
	pending []*pendingSignature
	md      *MessageDetails
	config  *packet.Config
}

func (scr *signatureCheckReader) Read(buf []byte) (n int, err error) {
	n, err = scr.md.LiteralData.Body.Read(buf)
	for _, sigState := range scr.pending {
		if sigState.wrappedHash != nil {
			sigState.wrappedHash.Write(buf[:n])
		}
	}
	if err == io.EOF {
		var p packet.Packet
		var readError error

		// The i-th one-pass signature corresponds to the i-th Signature
		// packet from the end, so the pending stack is popped as the
		// trailing signatures are read.
		pending := scr.pending
		innermost := true
		p, readError = scr.packets.Next()
		for readError == nil && len(pending) > 0 {
			sigState := pending[len(pending)-1]

			var sigErr error
			switch sig := p.(type) {
			case *packet.Signature:
				sigErr = scr.verifyPending(sigState, sig)
				if innermost {
					scr.md.Signature = sig
				}
			case *packet.SignatureV3:
				sigErr = scr.verifyPendingV3(sigState, sig)
				if innermost {
					scr.md.SignatureV3 = sig
				}
			default:
				p, readError = scr.packets.Next()
				continue
			}

			pending = pending[:len(pending)-1]
			if innermost || scr.md.SignatureError == nil {
				scr.md.SignatureError = sigErr
			}
			innermost = false
			p, readError = scr.packets.Next()
		}

		if len(pending) > 0 && scr.md.SignatureError == nil {
			scr.md.SignatureError = errors.StructuralError("LiteralData not followed by signature")
		}

		// The SymmetricallyEncrypted packet, if any, might have an
		// unsigned hash of its own. In order to check this we need to
		// close that Reader.
		if scr.md.decrypted != nil {
			mdcErr := scr.md.decrypted.Close()
			if mdcErr != nil {
				err = mdcErr
			}
		}
	}
	return
}

// verifyPending checks a trailing v4 signature against the pending one-pass
// state that it closes.
func (scr *signatureCheckReader) verifyPending(sigState *pendingSignature, sig *packet.Signature) error {
	if sigState.hashError != nil {
		return sigState.hashError
	}
	if sigState.signedBy == nil {
		return errors.ErrUnknownIssuer
	}
	if keyID := sig.IssuerKeyId; keyID != nil && *keyID != sigState.op.KeyId {
		return errors.StructuralError("bad key id")
	}
	if fingerprint := sig.IssuerFingerprint; fingerprint != nil {
		if !bytes.Equal(fingerprint, sigState.signedBy.PublicKey.Fingerprint) {
			return errors.StructuralError("bad key fingerprint")
		}
	}
	if err := sigState.signedBy.PublicKey.VerifySignature(sigState.h, sig); err != nil {
		return err
	}
	return checkSignatureDetails(sigState.signedBy, sig, scr.config)
}

// verifyPendingV3 is the v2/v3 signature variant of verifyPending.
func (scr *signatureCheckReader) verifyPendingV3(sigState *pendingSignature, sig *packet.SignatureV3) error {
	if sigState.hashError != nil {
		return sigState.hashError
	}
	if sigState.signedBy == nil {
		return errors.ErrUnknownIssuer
	}
	if sig.IssuerKeyId != sigState.op.KeyId {
		return errors.StructuralError("bad key id")
	}
	return sigState.signedBy.PublicKey.VerifySignatureV3(sigState.h, sig)
}

// VerifyDetachedSignature takes a signed file and a detached signature and
// returns the entity the signature was signed by, if any, and a possible
// signature verification error.
// If config is nil, sensible defaults will be used.
func VerifyDetachedSignature(keyring KeyRing, signed, signature io.Reader, config *packet.Config) (signer *Entity, err error) {
	var expectedHashes []crypto.Hash
	return verifyDetachedSignature(keyring, signed, signature, expectedHashes, config)
}

func verifyDetachedSignature(keyring KeyRing, signed, signature io.Reader, expectedHashes []crypto.Hash, config *packet.Config) (signer *Entity, err error) {
	var issuerKeyId uint64
	var hashFunc crypto.Hash
	var sigType packet.SignatureType
	var keys []Key
	var p packet.Packet

	expectedHashesLen := len(expectedHashes)
	packets := packet.NewReader(signature)
	var sig *packet.Signature
	for {
		p, err = packets.Next()
		if err == io.EOF {
			return nil, errors.ErrUnknownIssuer
		}
		if err != nil {
			return nil, err
		}

		var ok bool
		sig, ok = p.(*packet.Signature)
		if !ok {
			return nil, errors.StructuralError("non signature packet found")
		}
		if sig.IssuerKeyId == nil {
			return nil, errors.StructuralError("signature doesn't have an issuer")
		}
		issuerKeyId = *sig.IssuerKeyId
		hashFunc = sig.Hash
		sigType = sig.SigType

		for i, expectedHash := range expectedHashes {
			if hashFunc == expectedHash {
				break
			}
			if i+1 == expectedHashesLen {
				return nil, errors.StructuralError("hash algorithm mismatch with cleartext message headers")
			}
		}

		keys = keyring.KeysByIdUsage(issuerKeyId, packet.KeyFlagSign)
		if len(keys) > 0 {
			break
		}
	}

	if len(keys) == 0 {
		panic("unreachable")
	}

	h, wrappedHash, err := hashForSignature(hashFunc, sigType)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(wrappedHash, signed); err != nil && err != io.EOF {
		return nil, err
	}

	for _, key := range keys {
		err = key.PublicKey.VerifySignature(h, sig)
		if err == nil {
			return key.Entity, checkSignatureDetails(&key, sig, config)
		}
	}

	return nil, err
}

// CheckDetachedSignature takes a signed file and a detached signature and
// returns the entity the signature was signed by, if any.
// If config is nil, sensible defaults will be used.
func CheckDetachedSignature(keyring KeyRing, signed, signature io.Reader, config *packet.Config) (signer *Entity, err error) {
	return VerifyDetachedSignature(keyring, signed, signature, config)
}

// checkSignatureDetails verifies the metadata of the signature.
// It checks the following:
//   - Hash function should not be invalid according to the config.
//   - Verification key must be older than the signature creation time.
//   - Check signature creation time.
//   - Check signature lifetime.
func checkSignatureDetails(key *Key, signature *packet.Signature, config *packet.Config) error {
	now := config.Now()
	sigLifetimeExpired := signature.SigExpired(now)
	sigCreatedInTheFuture := signature.CreationTime.After(now)
	keyCreatedAfterSig := key.PublicKey.CreationTime.After(signature.CreationTime)

	keyRevoked := key.Revoked(now)
	keyExpired := false
	if key.SelfSignature != nil {
		keyExpired = key.PublicKey.KeyExpired(key.SelfSignature, now)
	}

	if config.RejectHashAlgorithm(signature.Hash) ||
		(signature.SigType == packet.SigTypeBinary || signature.SigType == packet.SigTypeText) &&
			config.RejectMessageHashAlgorithm(signature.Hash) {
		return errors.SignatureError("insecure hash algorithm: " + signature.Hash.String())
	}

	if config.RejectPublicKeyAlgorithm(key.PublicKey.PubKeyAlgo) {
		return errors.SignatureError("insecure public key algorithm")
	}

	switch key.PublicKey.PubKeyAlgo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSASignOnly:
		length, err := key.PublicKey.BitLength()
		if err != nil || length < config.MinimumRSABits() {
			return errors.SignatureError("key size is insecure")
		}
	case packet.PubKeyAlgoECDSA, packet.PubKeyAlgoEdDSA, packet.PubKeyAlgoECDH:
		curve, err := key.PublicKey.Curve()
		if err != nil || config.RejectCurve(curve) {
			return errors.SignatureError("insecure curve")
		}
	}

	if sigLifetimeExpired {
		return errors.ErrSignatureExpired
	}
	if sigCreatedInTheFuture {
		return errors.SignatureError("signature created in the future")
	}
	if keyCreatedAfterSig {
		return errors.SignatureError("signature created before the key")
	}
	if keyRevoked {
		return errors.ErrKeyRevoked
	}
	if keyExpired {
		return errors.ErrKeyExpired
	}
	return nil
}

