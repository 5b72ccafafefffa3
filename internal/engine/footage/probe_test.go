package footage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MediaInfo
		wantErr bool
	}{
		{
			name: "format duration",
			input: `{"format":{"duration":"12.500000"},"streams":[
				{"codec_type":"audio","codec_name":"aac"},
				{"codec_type":"video","codec_name":"h264","width":1920,"height":1080}]}`,
			want: MediaInfo{Duration: 12500 * time.Millisecond, Width: 1920, Height: 1080, VideoCodec: "h264", HasVideo: true},
		},
		{
			name:  "stream duration fallback",
			input: `{"format":{},"streams":[{"codec_type":"video","codec_name":"vp9","width":1280,"height":720,"duration":"4.0"}]}`,
			want:  MediaInfo{Duration: 4 * time.Second, Width: 1280, Height: 720, VideoCodec: "vp9", HasVideo: true},
		},
		{
			name:  "audio only",
			input: `{"format":{"duration":"3.0"},"streams":[{"codec_type":"audio","codec_name":"mp3"}]}`,
			want:  MediaInfo{Duration: 3 * time.Second},
		},
		{
			name:  "first video stream wins",
			input: `{"format":{"duration":"1"},"streams":[{"codec_type":"video","codec_name":"h264","width":640,"height":360},{"codec_type":"video","codec_name":"mjpeg","width":10,"height":10}]}`,
			want:  MediaInfo{Duration: time.Second, Width: 640, Height: 360, VideoCodec: "h264", HasVideo: true},
		},
		{
			name:    "garbage",
			input:   `not json`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeOutput([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
