package encoding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"reel/internal/media"
	"reel/internal/services"
)

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func testJob(t *testing.T) media.Job {
	t.Helper()
	dir := t.TempDir()
	return media.NewJob(filepath.Join(dir, "in.mkv"), filepath.Join(dir, "out.mkv"), media.AudioSettings{
		AudioEncoder: media.CodecAAC,
	})
}

func TestRunnerSuccess(t *testing.T) {
	setHelperCommand(t, "success")

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	var snapshots []Progress
	handle.AddListener(func(p Progress) {
		snapshots = append(snapshots, p)
	})

	if err := handle.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("expected 2 progress snapshots, got %d", len(snapshots))
	}
	first := snapshots[0]
	if first.Frame == nil || *first.Frame != 10 {
		t.Fatalf("unexpected first frame: %v", first.Frame)
	}
	if first.Bitrate.Value != 128.5 || first.Bitrate.Unit != RateKilobits {
		t.Fatalf("unexpected first bitrate: %+v", first.Bitrate)
	}
	second := snapshots[1]
	if second.OutTimeMicros != 2000000 || second.Seconds() != 2 {
		t.Fatalf("unexpected second timestamp: %d", second.OutTimeMicros)
	}

	last := handle.LastProgress()
	if last == nil || last.OutTimeMicros != 3000000 {
		t.Fatalf("expected terminal snapshot with final accumulator, got %+v", last)
	}
}

func TestRunnerInjectsControlFlags(t *testing.T) {
	setHelperCommand(t, "success")

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer func() {
		_ = handle.Wait(context.Background())
	}()

	args := handle.Args()
	if args[0] != "-hide_banner" || args[1] != "-v" || args[2] != "error" || args[3] != "-nostdin" {
		t.Fatalf("expected control header, got %v", args[:4])
	}
	n := len(args)
	if args[n-3] != "-progress" || args[n-2] != "pipe:1" || args[n-1] != "-y" {
		t.Fatalf("expected control trailer, got %v", args[n-3:])
	}
}

func TestRunnerValidationFailsSynchronously(t *testing.T) {
	setHelperCommand(t, "success")

	runner := NewRunner()
	job := testJob(t)
	job.Settings = media.AudioSettings{
		AudioEncoder: media.StreamCopy{},
		AudioBitrate: media.Kilobits(128),
	}
	if _, err := runner.Start(context.Background(), job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected synchronous validation error, got %v", err)
	}
}

func TestRunnerSpawnFailureSurfacesThroughWait(t *testing.T) {
	runner := NewRunner(
		WithBinary(filepath.Join(t.TempDir(), "missing-ffmpeg")),
		WithPollInterval(time.Millisecond),
	)
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := handle.Wait(context.Background()); !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected spawn classification, got %v", err)
	}
}

func TestRunnerNonzeroExitClassifiedWithTail(t *testing.T) {
	setHelperCommand(t, "exit137")

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	waitErr := handle.Wait(context.Background())
	if !errors.Is(waitErr, services.ErrExternalTool) {
		t.Fatalf("expected external tool classification, got %v", waitErr)
	}

	var record *ErrorRecord
	if !errors.As(waitErr, &record) {
		t.Fatalf("expected error record, got %T", waitErr)
	}
	if record.ExitCode != 137 {
		t.Fatalf("expected exit code 137, got %d", record.ExitCode)
	}
	if record.StderrTail == "" {
		t.Fatal("expected captured stderr tail")
	}
	if len(record.Args) == 0 {
		t.Fatal("expected invocation args in error record")
	}
}

func TestRunnerMissingEndMarkerIsProtocolViolation(t *testing.T) {
	setHelperCommand(t, "noend")

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := handle.Wait(context.Background()); !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected protocol violation, got %v", err)
	}
}

func TestRunnerCancelYieldsCanceledOutcome(t *testing.T) {
	setHelperCommand(t, "slow")

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	handle.AddListener(func(Progress) {
		handle.Cancel()
	})

	waitErr := handle.Wait(context.Background())
	if !errors.Is(waitErr, services.ErrCanceled) {
		t.Fatalf("expected canceled classification, got %v", waitErr)
	}

	var record *ErrorRecord
	if !errors.As(waitErr, &record) {
		t.Fatalf("expected error record, got %T", waitErr)
	}
	if record.ExitCode != CanceledExitCode {
		t.Fatalf("expected sentinel exit code, got %d", record.ExitCode)
	}
}

func TestRunnerTimeoutIsSugarOverCancel(t *testing.T) {
	setHelperCommand(t, "slow")

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), testJob(t))
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	handle.StartTimeout(50 * time.Millisecond)
	if err := handle.Wait(context.Background()); !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected canceled classification after timeout, got %v", err)
	}
}

func TestRunnerLockedOutputRefusesSpawn(t *testing.T) {
	setHelperCommand(t, "success")

	job := testJob(t)
	lock := flock.New(job.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to pre-acquire lock: %v", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runner := NewRunner(WithPollInterval(time.Millisecond))
	handle, err := runner.Start(context.Background(), job)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := handle.Wait(context.Background()); !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected spawn refusal for locked output, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		fmt.Println("frame=10")
		fmt.Println("fps=25.0")
		fmt.Println("bitrate=128.5kbits/s")
		fmt.Println("total_size=1024")
		fmt.Println("out_time_us=1000000")
		fmt.Println("speed=1.0x")
		fmt.Println("progress=continue")
		fmt.Println("frame=20")
		fmt.Println("out_time_us=2000000")
		fmt.Println("progress=continue")
		fmt.Println("frame=30")
		fmt.Println("out_time_us=3000000")
		fmt.Println("progress=end")
		os.Exit(0)
	case "exit137":
		fmt.Println("frame=1")
		fmt.Println("progress=continue")
		fmt.Fprintln(os.Stderr, "Error while filtering: generic error in an external library")
		os.Exit(137)
	case "noend":
		fmt.Println("frame=1")
		fmt.Println("progress=continue")
		os.Exit(0)
	case "slow":
		for i := 0; i < 200; i++ {
			fmt.Printf("frame=%d\n", i)
			fmt.Println("progress=continue")
			time.Sleep(25 * time.Millisecond)
		}
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
