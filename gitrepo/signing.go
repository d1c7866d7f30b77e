package gitrepo

import (
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// signingEntity loads the armored OpenPGP private key configured for tag
// signing. The key file is read from the host filesystem, not the injected
// worktree filesystem, because signing keys live outside the repository.
func (r *Repo) signingEntity() (*openpgp.Entity, error) {
	if r.options.SigningKeyPath == "" {
		return nil, WrapError(ErrInvalidRef, "tag signing requested but no signing key is configured")
	}

	f, err := os.Open(r.options.SigningKeyPath)
	if err != nil {
		return nil, WrapErrorf(err, "failed to open signing key %q", r.options.SigningKeyPath)
	}
	defer f.Close()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, WrapErrorf(err, "failed to read signing key %q", r.options.SigningKeyPath)
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if entity.PrivateKey.Encrypted {
			if r.options.SigningKeyPassphrase == "" {
				return nil, WrapError(ErrInvalidRef, "signing key is encrypted and no passphrase is configured")
			}
			if err := entity.PrivateKey.Decrypt([]byte(r.options.SigningKeyPassphrase)); err != nil {
				return nil, WrapError(err, "failed to decrypt signing key")
			}
		}
		return entity, nil
	}

	return nil, WrapErrorf(ErrInvalidRef, "no private key found in %q", r.options.SigningKeyPath)
}
