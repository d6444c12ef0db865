package audio

import "github.com/arl/blip"

// OutputRate is the sample rate delivered to audio devices.
const OutputRate = 48000

const bufferSamples = blip.MaxFrame

// Resampler converts interleaved stereo samples from a core's native rate
// to OutputRate with band-limited synthesis, one blip buffer per channel.
type Resampler struct {
	inRate      float64
	left, right *blip.Buffer
	prevL       int32
	prevR       int32
	chunk       int // max input frames per blip time frame
	out         []int16
}

// NewResampler returns a resampler for input at inRate Hz.
func NewResampler(inRate float64) *Resampler {
	r := &Resampler{
		left:  blip.NewBuffer(bufferSamples),
		right: blip.NewBuffer(bufferSamples),
	}
	r.SetInputRate(inRate)
	return r
}

// SetInputRate changes the input rate and clears pending samples.
func (r *Resampler) SetInputRate(inRate float64) {
	if inRate <= 0 {
		inRate = OutputRate
	}
	r.inRate = inRate
	r.left.SetRates(inRate, OutputRate)
	r.right.SetRates(inRate, OutputRate)

	// Keep every time frame well inside the blip buffer.
	r.chunk = int(float64(bufferSamples-64) * inRate / OutputRate)
	r.Clear()
}

// InputRate returns the configured input rate.
func (r *Resampler) InputRate() float64 {
	return r.inRate
}

// Clear drops buffered samples and resets the waveform history.
func (r *Resampler) Clear() {
	r.left.Clear()
	r.right.Clear()
	r.prevL, r.prevR = 0, 0
}

// Process resamples in (L, R interleaved) and returns the output samples,
// also interleaved. The result is reused by the next call.
func (r *Resampler) Process(in []int16) []int16 {
	r.out = r.out[:0]
	frames := len(in) / 2
	for start := 0; start < frames; start += r.chunk {
		end := min(start+r.chunk, frames)
		r.frame(in[start*2 : end*2])
	}
	return r.out
}

func (r *Resampler) frame(in []int16) {
	n := len(in) / 2
	for i := 0; i < n; i++ {
		l, rr := int32(in[i*2]), int32(in[i*2+1])
		if d := l - r.prevL; d != 0 {
			r.left.AddDelta(uint64(i), d)
			r.prevL = l
		}
		if d := rr - r.prevR; d != 0 {
			r.right.AddDelta(uint64(i), d)
			r.prevR = rr
		}
	}
	r.left.EndFrame(n)
	r.right.EndFrame(n)

	avail := r.left.SamplesAvailable()
	base := len(r.out)
	r.out = append(r.out, make([]int16, avail*2)...)
	got := r.left.ReadSamples(r.out[base:], avail, blip.Stereo)
	r.right.ReadSamples(r.out[base+1:], avail, blip.Stereo)
	r.out = r.out[:base+got*2]
}
