package core

import (
	"github.com/encodeous/netsim/cipher"
	"github.com/encodeous/netsim/state"
)

const ReasonIncomplete = "transmission incomplete"

type SecureRequest struct {
	Plaintext       string
	Key             string
	Source          state.NodeId
	Destination     state.NodeId
	LossProbability float64
}

type SecureResult struct {
	Success       bool     `json:"success"`
	Error         string   `json:"error,omitempty"`
	Plaintext     string   `json:"plaintext"`
	EncryptedText string   `json:"encrypted_text"`
	DecryptedText string   `json:"decrypted_text,omitempty"`
	KeyMatrix     []string `json:"key_matrix"`
	TransmitResult
}

// SecureTransmit encrypts the plaintext, carries the ciphertext across n and decrypts it at the
// destination, but only if every byte was acknowledged.
func SecureTransmit(n *Network, cfg state.TransportCfg, req SecureRequest, rng LossSource) (SecureResult, error) {
	ct, err := cipher.Encrypt(req.Plaintext, req.Key)
	if err != nil {
		return SecureResult{}, err
	}
	res := SecureResult{
		Plaintext:     req.Plaintext,
		EncryptedText: ct,
		KeyMatrix:     cipher.KeyMatrix(req.Key).Rows(),
	}
	tr, err := Transmit(n, cfg, TransmitRequest{
		PayloadBytes:    len(ct),
		Source:          req.Source,
		Destination:     req.Destination,
		LossProbability: req.LossProbability,
	}, rng)
	if err != nil {
		return SecureResult{}, err
	}
	res.TransmitResult = tr
	switch {
	case !tr.Reachable:
		res.Error = tr.Reason
	case !tr.Transport.Complete:
		res.Error = ReasonIncomplete
	default:
		res.DecryptedText, err = cipher.Decrypt(ct, req.Key)
		if err != nil {
			return SecureResult{}, err
		}
		res.Success = true
	}
	return res, nil
}
