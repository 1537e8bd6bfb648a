package eeprom

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/i2c"
)

func TestPlanAddressSequence(t *testing.T) {
	for _, bs := range []int{1, 3, 16, 32, 64} {
		for _, count := range []int{0, 1, bs - 1, bs, bs + 1, 3*bs + 5, 4096} {
			if count < 0 {
				continue
			}
			blocks, err := Plan(count, bs)
			require.NoError(t, err)

			total := 0
			for i, b := range blocks {
				require.Equal(t, i*bs, b.Offset, "count=%d bs=%d block=%d", count, bs, i)
				if i < len(blocks)-1 {
					require.Equal(t, bs, b.Length)
				}
				total += b.Length
			}
			require.Equal(t, count, total)

			if count > 0 {
				last := blocks[len(blocks)-1]
				want := count % bs
				if want == 0 {
					want = bs
				}
				require.Equal(t, want, last.Length, "count=%d bs=%d", count, bs)
			}
		}
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	_, err := Plan(10, 0)
	require.Error(t, err)
	_, err = Plan(-1, 32)
	require.Error(t, err)
	_, err = Plan(MaxAddress+2, 32)
	require.Error(t, err)
}

func TestBlockAddressBytes(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x20}, Block{Offset: 0x120}.AddressBytes())
}

func newSim() *i2c.SimAdapter {
	cfg := i2c.DefaultSimConfig()
	cfg.WriteCycle = 0
	return i2c.NewSimAdapter(cfg)
}

func TestReadIssuesBlocksInOrder(t *testing.T) {
	sim := newSim()
	image := make([]byte, 100)
	for i := range image {
		image[i] = byte(i)
	}
	require.NoError(t, sim.Load(image))

	mem := New(sim, 0x50)
	got, err := mem.Read(100)
	require.NoError(t, err)
	require.Equal(t, image, got)

	transfers := sim.Transfers()
	require.Len(t, transfers, 4)
	for i, tr := range transfers {
		require.Equal(t, i2c.TransferWriteRead, tr.Kind)
		require.Equal(t, i*32, tr.Offset())
	}
	require.Equal(t, 4, transfers[3].ReadLen)
}

func TestWriteRoundTrip(t *testing.T) {
	sim := newSim()
	var slept []time.Duration
	mem := New(sim, 0x50, WithBlockSize(16))
	mem.sleep = func(d time.Duration) { slept = append(slept, d) }

	data := []byte("HAT EEPROM block transfer round trip")
	require.NoError(t, mem.Write(data))
	require.Len(t, slept, 3)
	for _, d := range slept {
		require.Equal(t, DefaultWriteDelay, d)
	}

	for i, tr := range sim.Transfers() {
		require.Equal(t, i2c.TransferWrite, tr.Kind)
		require.Equal(t, i*16, tr.Offset())
	}

	got, err := mem.Read(len(data))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestWriteWithoutDelayHitsWriteCycle(t *testing.T) {
	cfg := i2c.DefaultSimConfig()
	cfg.WriteCycle = time.Hour
	sim := i2c.NewSimAdapter(cfg)

	mem := New(sim, 0x50, WithWriteDelay(0))
	err := mem.Write(make([]byte, 64))
	require.ErrorIs(t, err, i2c.ErrBusy)

	var be *BlockError
	require.True(t, errors.As(err, &be))
	require.Equal(t, 1, be.Index)
	require.Equal(t, 32, be.Offset)
}

func TestWriteWithDelayWaitsOutWriteCycle(t *testing.T) {
	cfg := i2c.DefaultSimConfig()
	cfg.WriteCycle = time.Millisecond
	sim := i2c.NewSimAdapter(cfg)

	mem := New(sim, 0x50, WithWriteDelay(2*time.Millisecond))
	data := make([]byte, 70)
	for i := range data {
		data[i] = byte(0xA0 + i)
	}
	require.NoError(t, mem.Write(data))
	require.Equal(t, data, sim.Bytes()[:70])
}

func TestWriteProtectedPropagates(t *testing.T) {
	sim := newSim()
	sim.Config.WriteProtect = true

	mem := New(sim, 0x50, WithWriteDelay(0))
	err := mem.Write([]byte{1, 2, 3})
	require.ErrorIs(t, err, i2c.ErrWriteProtected)
	require.True(t, i2c.IsTransportError(err))
	require.Len(t, sim.Transfers(), 1)
}

type shortBus struct{}

func (shortBus) WriteThenRead(addr uint16, w []byte, n int) ([]byte, error) {
	return make([]byte, n-1), nil
}

func (shortBus) Write(addr uint16, data []byte) error { return nil }

func TestReadShortTransfer(t *testing.T) {
	_, err := New(shortBus{}, 0x50).Read(8)
	require.ErrorIs(t, err, i2c.ErrShortRead)
}

func TestReadWrongAddressAborts(t *testing.T) {
	sim := newSim()
	_, err := New(sim, 0x51).Read(64)
	require.ErrorIs(t, err, i2c.ErrNoDevice)
	require.Len(t, sim.Transfers(), 1)
}

func TestReadFullAddressSpaceInOneBlock(t *testing.T) {
	cfg := i2c.DefaultSimConfig()
	cfg.Size = MaxAddress + 1
	sim := i2c.NewSimAdapter(cfg)

	// A single 64 KiB block does not fit a 16-bit message length.
	mem := New(sim, 0x50, WithBlockSize(MaxAddress+1))
	_, err := mem.Read(MaxAddress + 1)
	require.Error(t, err)
	require.Empty(t, sim.Transfers())

	data, err := New(sim, 0x50, WithBlockSize(0x8000)).Read(MaxAddress + 1)
	require.NoError(t, err)
	require.Len(t, data, MaxAddress+1)
}
