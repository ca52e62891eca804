package printer

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Beep(t *testing.T) {
	data := NewDocument().Beep(2, 3).Bytes()
	assert.Equal(t, []byte{ESC, '@', ESC, 'B', 2, 3}, data)

	data = NewDocument().Beep(0, 42).Bytes()
	assert.Equal(t, []byte{ESC, '@', ESC, 'B', 1, 9}, data)
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("none", "", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)
}

func TestUSBPrinter_WritesToDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	p := NewUSBPrinter(path)
	require.True(t, p.IsConnected())
	require.NoError(t, p.Print(context.Background(), []byte{ESC, '@'}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{ESC, '@'}, got)
}

func TestNetworkPrinter_SendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), NewDocument().Beep(1, 1).Bytes()))

	assert.Equal(t, []byte{ESC, '@', ESC, 'B', 1, 1}, <-received)
}
