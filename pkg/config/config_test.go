package config

import "testing"

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErrs int
	}{
		{"valid tcp", Options{Scheme: "tcp"}, 0},
		{"key without ssl", Options{Key: "secret"}, 1},
		{"key with ssl is fine", Options{SSL: true, Key: "secret"}, 0},
		{"bad scheme", Options{Scheme: "ftp"}, 1},
		{"custom dns with no servers", Options{DNS: DNSCustom}, 1},
		{"custom dns with servers", Options{DNS: DNSCustom, DNSServers: []string{"1.1.1.1:53"}}, 0},
		{"negative max conns", Options{MaxConns: -1}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(tc.opts.Validate()); got != tc.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d", got, tc.wantErrs)
			}
		})
	}
}

func TestOptions_GetKey(t *testing.T) {
	o := Options{Key: "abc"}
	if got := o.GetKey(); got != KeySalt+"abc" {
		t.Errorf("GetKey() = %q, want salted key", got)
	}

	o2 := Options{}
	if got := o2.GetKey(); got != "" {
		t.Errorf("GetKey() with no key = %q, want empty", got)
	}
}
