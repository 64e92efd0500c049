// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"testing"
)

var userIdTests = []struct {
	id                   string
	name, comment, email string
}{
	{"", "", "", ""},
	{"John Smith", "John Smith", "", ""},
	{"John Smith ()", "John Smith", "", ""},
	{"John Smith () <john@example.com>", "John Smith", "", "john@example.com"},
	{"John Smith (This is a comment)", "John Smith", "This is a comment", ""},
	{"John Smith (This is a comment) <john@example.com>", "John Smith", "This is a comment", "john@example.com"},
	{"John Smith <john@example.com>", "John Smith", "", "john@example.com"},
	{"<john@example.com>", "", "", "john@example.com"},
}

func TestParseUserId(t *testing.T) {
	for i, test := range userIdTests {
		name, comment, email := parseUserId(test.id)
		if name != test.name {
			t.Errorf("%d: name mismatch got:%s want:%s", i, name, test.name)
		}
		if comment != test.comment {
			t.Errorf("%d: comment mismatch got:%s want:%s", i, comment, test.comment)
		}
		if email != test.email {
			t.Errorf("%d: email mismatch got:%s want:%s", i, email, test.email)
		}
	}
}

func TestNewUserId(t *testing.T) {
	uid := NewUserId("Test User", "comment", "test@example.com")
	if uid == nil {
		t.Fatalf("NewUserId returned nil")
	}
	if uid.Id != "Test User (comment) <test@example.com>" {
		t.Errorf("unexpected id: %q", uid.Id)
	}

	if NewUserId("bad(name", "", "") != nil {
		t.Errorf("invalid characters were accepted")
	}
}

func TestUserIdRoundTrip(t *testing.T) {
	uid := NewUserId("Test User", "", "test@example.com")
	buf := bytes.NewBuffer(nil)
	if err := uid.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatalf("failed to reparse user id: %s", err)
	}
	parsed, ok := p.(*UserId)
	if !ok {
		t.Fatalf("didn't get a user id packet")
	}
	if parsed.Id != uid.Id || parsed.Name != uid.Name || parsed.Email != uid.Email {
		t.Errorf("user id did not survive a round trip: %#v", parsed)
	}
}
