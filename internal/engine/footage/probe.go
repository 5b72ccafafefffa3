package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// MediaInfo is what the validator needs to know about a downloaded file.
type MediaInfo struct {
	Duration   time.Duration
	Width      int
	Height     int
	VideoCodec string
	HasVideo   bool
}

// Prober inspects a local media file.
type Prober interface {
	Probe(ctx context.Context, path string) (MediaInfo, error)
}

// FFProbe runs the ffprobe binary.
type FFProbe struct {
	path string
}

// NewFFProbe locates ffprobe. An empty bin looks it up in PATH.
func NewFFProbe(bin string) (*FFProbe, error) {
	if bin == "" {
		bin = "ffprobe"
	}
	p, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &FFProbe{path: p}, nil
}

// Probe extracts duration and the first video stream's shape.
func (f *FFProbe) Probe(ctx context.Context, path string) (MediaInfo, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	out, err := exec.CommandContext(ctx, f.path, args...).Output()
	if err != nil {
		return MediaInfo{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeOutput(out)
}

// probeResult matches ffprobe JSON output structure.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

func parseProbeOutput(data []byte) (MediaInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return MediaInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var info MediaInfo
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second))
	}
	for _, s := range probe.Streams {
		if s.CodecType != "video" || info.HasVideo {
			continue
		}
		info.HasVideo = true
		info.Width = s.Width
		info.Height = s.Height
		info.VideoCodec = s.CodecName
		// Some containers only carry duration on the stream.
		if info.Duration <= 0 {
			if secs, err := strconv.ParseFloat(s.Duration, 64); err == nil {
				info.Duration = time.Duration(secs * float64(time.Second))
			}
		}
	}
	return info, nil
}
