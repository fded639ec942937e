package main

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"pluginhost/host"
)

const demoChannels = 2

// audioBridge owns the duplex PortAudio streams and drives Instance.Next
// once per block, the way an embedding plugin engine's own audio-thread
// callback would. Grounded on client/audio.go's AudioEngine.Start
// (separate capture/playback portaudio.Stream, run from dedicated
// goroutines, Stop sequencing that joins them before closing).
type audioBridge struct {
	inst *host.Instance
	ctl  *controlHandler

	captureStream  *portaudio.Stream
	playbackStream *portaudio.Stream

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func newAudioBridge(inst *host.Instance, ctl *controlHandler) *audioBridge {
	return &audioBridge{inst: inst, ctl: ctl}
}

// Start opens duplex stereo streams at the instance's configured sample
// rate/block size and launches the engine-thread loop.
func (b *audioBridge) Start(sampleRate float64, blockSize int) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}

	inputDev, err := portaudio.DefaultInputDevice()
	if err != nil {
		b.running.Store(false)
		return err
	}
	outputDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		b.running.Store(false)
		return err
	}

	captureBuf := make([]float32, blockSize*demoChannels)
	captureParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inputDev,
			Channels: demoChannels,
			Latency:  inputDev.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockSize,
	}
	captureStream, err := portaudio.OpenStream(captureParams, captureBuf)
	if err != nil {
		b.running.Store(false)
		return err
	}

	playbackBuf := make([]float32, blockSize*demoChannels)
	playbackParams := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: demoChannels,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockSize,
	}
	playbackStream, err := portaudio.OpenStream(playbackParams, playbackBuf)
	if err != nil {
		captureStream.Close()
		b.running.Store(false)
		return err
	}

	if err := captureStream.Start(); err != nil {
		captureStream.Close()
		playbackStream.Close()
		b.running.Store(false)
		return err
	}
	if err := playbackStream.Start(); err != nil {
		captureStream.Stop()
		captureStream.Close()
		playbackStream.Close()
		b.running.Store(false)
		return err
	}

	b.captureStream = captureStream
	b.playbackStream = playbackStream
	b.stopCh = make(chan struct{})

	b.wg.Add(1)
	go b.engineLoop(captureBuf, playbackBuf, blockSize)

	slog.Info("audio bridge started", "sample_rate", sampleRate, "block_size", blockSize)
	return nil
}

// Stop halts the duplex streams. It closes stopCh and waits for engineLoop
// to finish its current block and return; only then are both streams
// stopped and closed, so no Read/Write is in flight when they go away.
func (b *audioBridge) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}
	close(b.stopCh)
	b.wg.Wait()
	b.captureStream.Stop()
	b.captureStream.Close()
	b.playbackStream.Stop()
	b.playbackStream.Close()
}

// engineLoop is the real-time engine thread: it is the one goroutine that
// calls Instance.Next/DrainReplies and drains the control queue, per
// spec.md §5's single-owner-per-thread rule.
func (b *audioBridge) engineLoop(captureBuf, playbackBuf []float32, blockSize int) {
	defer b.wg.Done()

	inL := make([]float32, blockSize)
	inR := make([]float32, blockSize)
	outL := make([]float32, blockSize)
	outR := make([]float32, blockSize)
	ins := [][]float32{inL, inR}
	outs := [][]float32{outL, outR}

	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		if err := b.captureStream.Read(); err != nil {
			slog.Warn("audio capture read failed", "error", err)
			continue
		}
		deinterleave(captureBuf, inL, inR)

		b.ctl.drain(b.inst)
		b.inst.DrainReplies()
		b.inst.Next(ins, outs, blockSize, nil, nil)

		interleave(playbackBuf, outL, outR)
		if err := b.playbackStream.Write(); err != nil {
			slog.Warn("audio playback write failed", "error", err)
		}
	}
}

func deinterleave(src []float32, left, right []float32) {
	for i := range left {
		left[i] = src[i*2]
		right[i] = src[i*2+1]
	}
}

func interleave(dst []float32, left, right []float32) {
	for i := range left {
		dst[i*2] = left[i]
		dst[i*2+1] = right[i]
	}
}
