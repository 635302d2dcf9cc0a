package lsp

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)

	if err := writeMessage(&buf, msg1); err != nil {
		t.Fatalf("write message 1: %v", err)
	}
	if err := writeMessage(&buf, msg2); err != nil {
		t.Fatalf("write message 2: %v", err)
	}

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range [][]byte{msg1, msg2} {
		got, err := readMessage(reader)
		if err != nil {
			t.Fatalf("read message %d: %v", i+1, err)
		}
		if string(got) != string(want) {
			t.Fatalf("unexpected message %d: %s", i+1, got)
		}
	}
	if _, err := readMessage(reader); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after the last frame, got %v", err)
	}
}

func TestReadMessageHeaders(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr string
	}{
		{"extra header", "Content-Type: application/vscode-jsonrpc\r\ncontent-length: 2\r\n\r\n{}", "{}", ""},
		{"missing length", "Content-Type: x\r\n\r\n{}", "", "missing Content-Length"},
		{"bad length", "Content-Length: abc\r\n\r\n", "", "invalid Content-Length"},
		{"negative length", "Content-Length: -4\r\n\r\n", "", "invalid Content-Length"},
		{"too large", "Content-Length: 999999999\r\n\r\n", "", "exceeds limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readMessage(bufio.NewReader(strings.NewReader(tc.in)))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil || string(got) != tc.want {
				t.Fatalf("got %q, %v", got, err)
			}
		})
	}
}
