package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"parallax-banner/internal/utils"

	"github.com/dustin/go-humanize"
)

var (
	FFmpegPath  = "ffmpeg"
	FFprobePath = "ffprobe"

	ErrVideoClosed = errors.New("convert: video closed")
)

// Video streams RGBA frames decoded by an ffmpeg subprocess. Frames are
// produced at the source frame rate; only the newest one is kept.
type Video struct {
	Width, Height int

	src    string
	loop   bool
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	front  []byte
	back   []byte
	fresh  bool
	paused bool
	err    error
}

// ProbeVideoSize asks ffprobe for the first video stream's dimensions.
func ProbeVideoSize(ctx context.Context, src string) (int, int, error) {
	out, err := exec.CommandContext(ctx, FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0:s=x",
		src,
	).Output()
	if err != nil {
		return 0, 0, fmt.Errorf("convert: ffprobe %s: %w", src, err)
	}
	return parseProbeSize(string(out))
}

func parseProbeSize(out string) (int, int, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	ws, hs, ok := strings.Cut(strings.TrimSpace(line), "x")
	if !ok {
		return 0, 0, fmt.Errorf("convert: unexpected ffprobe output %q", out)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("convert: ffprobe width: %w", err)
	}
	h, err := strconv.Atoi(strings.TrimSuffix(hs, "x"))
	if err != nil {
		return 0, 0, fmt.Errorf("convert: ffprobe height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("convert: invalid video size %dx%d", w, h)
	}
	return w, h, nil
}

// OpenVideo probes src and starts decoding it. Audio is always dropped.
func OpenVideo(ctx context.Context, src string, loop bool) (*Video, error) {
	w, h, err := ProbeVideoSize(ctx, src)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	v := &Video{
		Width:  w,
		Height: h,
		src:    src,
		loop:   loop,
		cancel: cancel,
		done:   make(chan struct{}),
		front:  make([]byte, w*h*4),
		back:   make([]byte, w*h*4),
	}

	go v.run(ctx)
	utils.Debug("Video %s opened: %dx%d, %s per frame", src, w, h, humanize.Bytes(uint64(w*h*4)))
	return v, nil
}

func (v *Video) args() []string {
	args := []string{"-v", "error", "-re"}
	if v.loop {
		args = append(args, "-stream_loop", "-1")
	}
	return append(args,
		"-i", v.src,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
}

func (v *Video) run(ctx context.Context) {
	defer close(v.done)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, FFmpegPath, v.args()...)
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		v.fail(err)
		return
	}
	if err := cmd.Start(); err != nil {
		v.fail(fmt.Errorf("convert: start ffmpeg: %w", err))
		return
	}

	err = v.readFrames(bufio.NewReaderSize(stdout, len(v.back)))
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		v.fail(ErrVideoClosed)
	case err != nil && !errors.Is(err, io.EOF):
		v.fail(fmt.Errorf("convert: read frames: %w", err))
	case waitErr != nil:
		v.fail(fmt.Errorf("convert: ffmpeg: %w: %s", waitErr, strings.TrimSpace(stderr.String())))
	default:
		v.fail(io.EOF)
	}
}

func (v *Video) readFrames(r io.Reader) error {
	for {
		v.mu.Lock()
		buf := v.back
		v.mu.Unlock()

		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}

		v.mu.Lock()
		v.front, v.back = v.back, v.front
		v.fresh = true
		v.mu.Unlock()
	}
}

func (v *Video) fail(err error) {
	v.mu.Lock()
	if v.err == nil {
		v.err = err
	}
	v.mu.Unlock()
	if !errors.Is(err, ErrVideoClosed) && !errors.Is(err, io.EOF) {
		utils.Error("Video %s stopped: %v", v.src, err)
	}
}

// WithFrame calls fn with the newest decoded frame if one arrived since the
// last call and playback is not paused. fn must not keep pix.
func (v *Video) WithFrame(fn func(pix []byte)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.fresh || v.paused {
		return false
	}
	v.fresh = false
	fn(v.front)
	return true
}

// Pause freezes the displayed frame. Decoding continues in the background.
func (v *Video) Pause() {
	v.mu.Lock()
	v.paused = true
	v.mu.Unlock()
}

func (v *Video) Resume() {
	v.mu.Lock()
	v.paused = false
	v.mu.Unlock()
}

// Err is the reason decoding stopped, or nil while it runs.
func (v *Video) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Close stops ffmpeg and waits for the reader to exit.
func (v *Video) Close() {
	v.cancel()
	<-v.done
}
