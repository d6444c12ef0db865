package shell

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/folium-app/mango/audio"
)

// ringBufferCapacity is about 170ms of 48kHz stereo 16-bit audio.
const ringBufferCapacity = 32768

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   audio.OutputRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// audioPlayer plays the core's samples through oto. Samples are queued from
// the audio callback and pulled by the device.
type audioPlayer struct {
	player *oto.Player
	ring   *audio.RingBuffer

	mu    sync.Mutex
	bytes []byte
}

func newAudioPlayer(volume float64, muted bool) (*audioPlayer, error) {
	ctx, err := ensureOtoContext()
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	ring := audio.NewRingBuffer(ringBufferCapacity)
	player := ctx.NewPlayer(ring)
	// About 50ms, down from half a second.
	player.SetBufferSize(19200)
	if muted {
		volume = 0
	}
	player.SetVolume(volume)
	player.Play()

	return &audioPlayer{
		player: player,
		ring:   ring,
		bytes:  make([]byte, 0, 4096),
	}, nil
}

// queue is installed as the core's audio callback.
func (a *audioPlayer) queue(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.mu.Lock()
	a.bytes = audio.SamplesToBytes(a.bytes[:0], samples)
	a.ring.Write(a.bytes)
	a.mu.Unlock()
}

// clear drops queued audio, e.g. when rewinding.
func (a *audioPlayer) clear() {
	a.ring.Clear()
}

func (a *audioPlayer) close() {
	a.ring.Close()
	a.player.Close()
}
