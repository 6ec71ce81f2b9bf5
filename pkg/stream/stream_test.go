package stream_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/serialcmd/serialcmd-go/pkg/stream"
	"github.com/serialcmd/serialcmd-go/pkg/stream/mocks"
)

func TestReadExactly(t *testing.T) {
	b, err := stream.ReadExactly(bytes.NewReader([]byte{1, 2, 3}), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
}

func TestReadExactlyShort(t *testing.T) {
	b, err := stream.ReadExactly(bytes.NewReader([]byte{1}), 4)
	assert.ErrorIs(t, err, stream.ErrShortRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []byte{1}, b)

	_, err = stream.ReadExactly(bytes.NewReader(nil), 1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadExactlyAssemblesPartialReads(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).RunAndReturn(func(p []byte) (int, error) {
		p[0] = 0xAA
		return 1, nil
	}).Once()
	s.EXPECT().Read(mock.Anything).RunAndReturn(func(p []byte) (int, error) {
		p[0] = 0xBB
		return 1, nil
	}).Once()

	b, err := stream.ReadExactly(s, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, b)
}

func TestWriteAll(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Write([]byte{1, 2}).Return(1, nil).Once()
	assert.ErrorIs(t, stream.WriteAll(s, []byte{1, 2}), io.ErrShortWrite)

	boom := errors.New("boom")
	s.EXPECT().Write([]byte{3}).Return(0, boom).Once()
	assert.ErrorIs(t, stream.WriteAll(s, []byte{3}), boom)
}

func TestMock(t *testing.T) {
	m := stream.NewMock([]byte{0x00, 0xAB})

	n, err := m.Write([]byte{0x01, 0x10})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x01, 0x10}, m.Written())

	b, err := stream.ReadExactly(m, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, b)
	assert.Equal(t, 1, m.Consumed())
	assert.Equal(t, 1, m.Remaining())

	m.Feed([]byte{0xCD})
	assert.Equal(t, 2, m.Remaining())

	_, err = stream.ReadExactly(m, 3)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestMockClosed(t *testing.T) {
	m := stream.NewMock([]byte{1})
	require.NoError(t, m.Close())
	_, err := m.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	_, err = m.Write([]byte{1})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 1)
		if _, err := io.ReadFull(c, buf); err != nil {
			return
		}
		_, _ = c.Write([]byte{0x00, buf[0] + 1})
	}()

	conn, err := stream.Dial(context.Background(), stream.TCPConfig{
		Address:     ln.Addr().String(),
		ReadTimeout: time.Second,
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0x41})
	require.NoError(t, err)
	b, err := stream.ReadExactly(conn, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x42}, b)
}

func TestDialReadTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err == nil {
			time.Sleep(500 * time.Millisecond)
			c.Close()
		}
	}()

	conn, err := stream.Dial(context.Background(), stream.TCPConfig{
		Address:     ln.Addr().String(),
		ReadTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = stream.ReadExactly(conn, 1)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = stream.Dial(context.Background(), stream.TCPConfig{Address: addr, DialTimeout: time.Second})
	assert.ErrorContains(t, err, addr)
}
