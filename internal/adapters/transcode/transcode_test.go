package transcode_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/okian/attnrisk/internal/adapters/transcode"
	"github.com/okian/attnrisk/internal/analysis"
	. "github.com/smartystreets/goconvey/convey"
)

func writeWav(t *testing.T, path string, rate int) {
	fh, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	enc := wav.NewEncoder(fh, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, rate/10),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestArgs(t *testing.T) {
	Convey("Args normalizes to mono 16kHz pcm", t, func() {
		So(transcode.Args("in.mp3", "out.wav"), ShouldResemble,
			[]string{"-y", "-i", "in.mp3", "-ar", "16000", "-ac", "1", "-acodec", "pcm_s16le", "out.wav"})
	})
}

func TestTranscode(t *testing.T) {
	Convey("Given an input already in the target format", t, func() {
		in := filepath.Join(t.TempDir(), "talk.wav")
		writeWav(t, in, transcode.SampleRate)
		tc := transcode.New(transcode.WithBinary("/nonexistent/ffmpeg"))

		out, err := tc.Transcode(context.Background(), in)

		Convey("Then it is copied without calling ffmpeg", func() {
			So(err, ShouldBeNil)
			So(out, ShouldEqual, filepath.Join(filepath.Dir(in), "talk"+transcode.Suffix))
			So(transcode.IsTargetWav(in), ShouldBeTrue)
			_, statErr := os.Stat(in)
			So(statErr, ShouldBeNil)
		})
	})

	Convey("Given a missing ffmpeg binary", t, func() {
		in := filepath.Join(t.TempDir(), "talk.mp3")
		So(os.WriteFile(in, []byte("not audio"), 0o600), ShouldBeNil)
		tc := transcode.New(transcode.WithBinary("/nonexistent/ffmpeg"))

		out, err := tc.Transcode(context.Background(), in)

		Convey("Then a conversion error is returned", func() {
			So(out, ShouldBeEmpty)
			So(errors.Is(err, analysis.ErrConversion), ShouldBeTrue)
		})
	})

	Convey("Given a tool that exits cleanly without writing output", t, func() {
		in := filepath.Join(t.TempDir(), "talk.mp3")
		So(os.WriteFile(in, []byte("not audio"), 0o600), ShouldBeNil)
		tc := transcode.New(transcode.WithBinary("true"))

		_, err := tc.Transcode(context.Background(), in)

		So(errors.Is(err, analysis.ErrConversion), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "no output produced")
	})

	Convey("A wav at another sample rate is not the target format", t, func() {
		in := filepath.Join(t.TempDir(), "hifi.wav")
		writeWav(t, in, 44100)
		So(transcode.IsTargetWav(in), ShouldBeFalse)
	})
}
