package audio

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/wav"
	"github.com/google/go-cmp/cmp"
)

func TestRingBuffer_BasicWriteRead(t *testing.T) {
	rb := NewRingBuffer(16)

	data := []byte{1, 2, 3, 4, 5}
	rb.Write(data)
	if rb.Buffered() != 5 {
		t.Fatalf("expected 5 buffered bytes, got %d", rb.Buffered())
	}

	out := make([]byte, 5)
	n, err := rb.Read(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(data, out[:n]); diff != "" {
		t.Errorf("read mismatch (-want +got):\n%s", diff)
	}
}

func TestRingBuffer_Overflow(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		writes [][]byte
		want   []byte
	}{
		{
			name:   "drops oldest",
			size:   8,
			writes: [][]byte{{1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11}},
			want:   []byte{4, 5, 6, 7, 8, 9, 10, 11},
		},
		{
			name:   "single write larger than capacity",
			size:   4,
			writes: [][]byte{{1, 2, 3, 4, 5, 6, 7, 8}},
			want:   []byte{5, 6, 7, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRingBuffer(tt.size)
			for _, w := range tt.writes {
				rb.Write(w)
			}
			if rb.Buffered() != tt.size {
				t.Fatalf("expected %d buffered bytes, got %d", tt.size, rb.Buffered())
			}
			out := make([]byte, tt.size)
			n, _ := rb.Read(out)
			if diff := cmp.Diff(tt.want, out[:n]); diff != "" {
				t.Errorf("read mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRingBuffer_WrapAround(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]byte{1, 2, 3, 4, 5, 6})
	rb.Read(make([]byte, 4))
	rb.Write([]byte{7, 8, 9, 10, 11})

	if rb.Buffered() != 7 {
		t.Fatalf("expected 7 buffered, got %d", rb.Buffered())
	}
	out := make([]byte, 7)
	n, _ := rb.Read(out)
	if diff := cmp.Diff([]byte{5, 6, 7, 8, 9, 10, 11}, out[:n]); diff != "" {
		t.Errorf("read mismatch (-want +got):\n%s", diff)
	}
}

func TestRingBuffer_PartialReadAndClear(t *testing.T) {
	rb := NewRingBuffer(16)
	rb.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	n, err := rb.Read(make([]byte, 3))
	if err != nil || n != 3 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if rb.Buffered() != 5 {
		t.Fatalf("expected 5 remaining, got %d", rb.Buffered())
	}

	rb.Clear()
	if rb.Buffered() != 0 {
		t.Fatalf("expected 0 buffered after clear, got %d", rb.Buffered())
	}
}

func TestRingBuffer_Close(t *testing.T) {
	rb := NewRingBuffer(16)
	rb.Write([]byte{1, 2})
	rb.Close()

	out := make([]byte, 2)
	if n, err := rb.Read(out); err != nil || n != 2 {
		t.Fatalf("Read after close = %d, %v", n, err)
	}
	if _, err := rb.Read(out); err != io.EOF {
		t.Fatalf("expected io.EOF after close and drain, got %v", err)
	}

	rb.Write([]byte{1, 2, 3})
	if rb.Buffered() != 0 {
		t.Fatalf("write after close was buffered")
	}
}

func TestRingBuffer_CloseUnblocksReader(t *testing.T) {
	rb := NewRingBuffer(16)

	done := make(chan error, 1)
	go func() {
		_, err := rb.Read(make([]byte, 4))
		done <- err
	}()

	rb.Close()
	if err := <-done; err != io.EOF {
		t.Fatalf("expected io.EOF from blocked reader, got %v", err)
	}
}

func TestRingBuffer_ConcurrentReadWrite(t *testing.T) {
	rb := NewRingBuffer(1024)
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		data := make([]byte, 100)
		for i := 0; i < total/len(data); i++ {
			rb.Write(data)
		}
		rb.Close()
	}()

	received := 0
	go func() {
		defer wg.Done()
		buf := make([]byte, 64)
		for {
			n, err := rb.Read(buf)
			received += n
			if err == io.EOF {
				return
			}
		}
	}()
	wg.Wait()

	if received == 0 || received > total {
		t.Fatalf("received %d bytes of %d", received, total)
	}
}

func TestSamplesToBytes(t *testing.T) {
	got := SamplesToBytes(nil, []int16{1, -1, 0x1234})
	want := []byte{0x01, 0x00, 0xFF, 0xFF, 0x34, 0x12}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
}

// sine returns frames of an interleaved stereo sine wave.
func sine(frames int, rate, freq float64) []int16 {
	out := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*freq*float64(i)/rate))
		out[i*2] = v
		out[i*2+1] = -v
	}
	return out
}

func TestResamplerRate(t *testing.T) {
	const inRate = 32040
	r := NewResampler(inRate)

	// One second of audio in 60 frame-sized pieces.
	in := sine(inRate, inRate, 440)
	produced := 0
	per := inRate / 60
	for start := 0; start < inRate; start += per {
		end := min(start+per, inRate)
		out := r.Process(in[start*2 : end*2])
		if len(out)%2 != 0 {
			t.Fatalf("odd sample count %d", len(out))
		}
		produced += len(out) / 2
	}

	if diff := produced - OutputRate; diff < -8 || diff > 8 {
		t.Errorf("produced %d frames for one second, want about %d", produced, OutputRate)
	}
}

func TestResamplerLargeInput(t *testing.T) {
	r := NewResampler(22050)
	// Larger than a single blip time frame; must not panic.
	out := r.Process(sine(22050, 22050, 1000))
	if n := len(out) / 2; n < OutputRate-8 || n > OutputRate+8 {
		t.Errorf("produced %d frames, want about %d", n, OutputRate)
	}
}

func TestResamplerStereoSeparation(t *testing.T) {
	r := NewResampler(OutputRate)
	out := r.Process(sine(4800, OutputRate, 440))
	var sum int64
	for i := 0; i+1 < len(out); i += 2 {
		sum += int64(out[i]) + int64(out[i+1])
	}
	// Channels carry opposite signals, they must cancel out.
	if avg := sum / int64(len(out)/2+1); avg > 200 || avg < -200 {
		t.Errorf("channels not independent, average L+R = %d", avg)
	}
}

func TestWAVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w, err := CreateWAV(path, OutputRate)
	if err != nil {
		t.Fatal(err)
	}
	samples := sine(480, OutputRate, 440)
	if err := w.Write(samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != OutputRate {
		t.Errorf("format = %+v", buf.Format)
	}
	if len(buf.Data) != 2*len(samples) {
		t.Errorf("decoded %d samples, want %d", len(buf.Data), 2*len(samples))
	}
	if buf.Data[2] != int(samples[2]) {
		t.Errorf("sample 2 = %d, want %d", buf.Data[2], samples[2])
	}
}
