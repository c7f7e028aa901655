package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

// FFmpegRecorder streams canvas frames to ffmpeg as raw RGBA and produces a
// preview video of a scroll sweep. ffmpeg starts on the first frame, once
// the frame size is known.
type FFmpegRecorder struct {
	Path    string
	FPS     int
	Encoder string // empty: libx264
	Quality int    // 0: encoder default

	ctx    context.Context
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    bytes.Buffer
	size   image.Point
	frames int
}

func NewFFmpegRecorder(ctx context.Context, path string, fps int) *FFmpegRecorder {
	if fps <= 0 {
		fps = 30
	}
	return &FFmpegRecorder{ctx: ctx, Path: path, FPS: fps}
}

func (r *FFmpegRecorder) WriteFrame(img *image.RGBA) error {
	size := img.Rect.Size()
	if r.cmd == nil {
		if err := r.start(size); err != nil {
			return err
		}
	}
	if size != r.size {
		return fmt.Errorf("frame size changed from %v to %v", r.size, size)
	}
	if err := writeRawRGBA(r.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	r.frames++
	return nil
}

// Frames is the number of frames sent to ffmpeg.
func (r *FFmpegRecorder) Frames() int { return r.frames }

// Close flushes the stream and waits for ffmpeg to finish the file.
func (r *FFmpegRecorder) Close() error {
	if r.cmd == nil {
		return nil
	}
	r.stdin.Close()
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, r.out.String())
	}
	return nil
}

func (r *FFmpegRecorder) start(size image.Point) error {
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	r.size = size
	r.cmd = exec.CommandContext(ctx, "ffmpeg", r.args(size)...)
	r.cmd.Stdout = &r.out
	r.cmd.Stderr = &r.out

	stdin, err := r.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	r.stdin = stdin
	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	return nil
}

func (r *FFmpegRecorder) args(size image.Point) []string {
	encoder := r.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	// yuv420p needs even dimensions
	w, h := size.X-size.X%2, size.Y-size.Y%2

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", size.X, size.Y),
		"-framerate", fmt.Sprintf("%d", r.FPS),
		"-i", "-",
		"-vf", fmt.Sprintf("crop=%d:%d:0:0", w, h),
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}
	args = append(args, qualityArgs(encoder, r.Quality)...)
	return append(args, r.Path)
}

func qualityArgs(encoder string, quality int) []string {
	if quality <= 0 {
		return nil
	}
	switch encoder {
	case "h264_videotoolbox":
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// BestH264Encoder picks a hardware H.264 encoder when ffmpeg has one.
func BestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}
