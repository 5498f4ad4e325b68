// SPDX-License-Identifier: GPL-3.0-or-later

package tlscfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTLSConfig(t *testing.T) {
	tests := map[string]struct {
		cfg      TLSConfig
		wantNil  bool
		wantFail bool
	}{
		"not configured":     {cfg: TLSConfig{}, wantNil: true},
		"skip verify":        {cfg: TLSConfig{InsecureSkipVerify: true}},
		"missing CA file":    {cfg: TLSConfig{TLSCA: "testdata/missing.pem"}, wantFail: true},
		"cert without key":   {cfg: TLSConfig{TLSCert: "testdata/cert.pem"}, wantFail: true},
		"missing cert & key": {cfg: TLSConfig{TLSCert: "testdata/cert.pem", TLSKey: "testdata/key.pem"}, wantFail: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			conf, err := NewTLSConfig(test.cfg)

			if test.wantFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if test.wantNil {
				assert.Nil(t, conf)
			} else {
				require.NotNil(t, conf)
				assert.Equal(t, test.cfg.InsecureSkipVerify, conf.InsecureSkipVerify)
			}
		})
	}
}
