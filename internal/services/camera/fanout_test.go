package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firewatch-worker-go/internal/models"
)

func fanoutCamera(faceInterval, fireInterval, queueSize int) *models.Camera {
	return &models.Camera{
		ID:                 1,
		FaceSampleInterval: faceInterval,
		FireSampleInterval: fireInterval,
		FaceFrames:         make(chan *models.RawFrame, queueSize),
		FireFrames:         make(chan *models.RawFrame, queueSize),
	}
}

func frame(id int64) *models.RawFrame {
	return &models.RawFrame{
		CameraID:  1,
		Data:      []byte{0, 0, 0},
		Timestamp: time.Now(),
		FrameID:   id,
		Width:     1,
		Height:    1,
	}
}

func TestDispatchDecimation(t *testing.T) {
	cam := fanoutCamera(2, 4, 16)
	f := NewFrameFanout(cam)

	for i := int64(1); i <= 12; i++ {
		f.Dispatch(frame(i))
	}

	// Every 2nd frame for faces, every 4th for fire.
	assert.Equal(t, 6, len(cam.FaceFrames))
	assert.Equal(t, 3, len(cam.FireFrames))
	assert.Equal(t, int64(12), f.Counter())

	fire := <-cam.FireFrames
	assert.Equal(t, int64(4), fire.FrameID)
}

func TestDispatchSharedFrameOnCoincidingCadence(t *testing.T) {
	cam := fanoutCamera(2, 2, 4)
	f := NewFrameFanout(cam)

	f.Dispatch(frame(1))
	f.Dispatch(frame(2))

	require.Equal(t, 1, len(cam.FaceFrames))
	require.Equal(t, 1, len(cam.FireFrames))

	face := <-cam.FaceFrames
	fire := <-cam.FireFrames
	assert.Same(t, face, fire)
}

func TestDispatchZeroIntervalDisablesDetector(t *testing.T) {
	cam := fanoutCamera(0, 1, 4)
	f := NewFrameFanout(cam)

	f.Dispatch(frame(1))
	f.Dispatch(frame(2))

	assert.Equal(t, 0, len(cam.FaceFrames))
	assert.Equal(t, 2, len(cam.FireFrames))
}

func TestDispatchEvictsOldestWhenQueueFull(t *testing.T) {
	cam := fanoutCamera(1, 0, 2)
	f := NewFrameFanout(cam)

	for i := int64(1); i <= 5; i++ {
		f.Dispatch(frame(i))
	}

	// Queue holds 2; frames 1 through 3 were evicted to keep the
	// freshest samples.
	require.Equal(t, 2, len(cam.FaceFrames))
	assert.Equal(t, int64(3), f.DroppedFace())
	assert.Equal(t, int64(0), f.DroppedFire())
	assert.Equal(t, int64(3), cam.Stats().SkippedFrames)

	first := <-cam.FaceFrames
	second := <-cam.FaceFrames
	assert.Equal(t, int64(4), first.FrameID)
	assert.Equal(t, int64(5), second.FrameID)
}

func TestOfferFrameEvictsSingleEntry(t *testing.T) {
	ch := make(chan *models.RawFrame, 1)

	assert.True(t, offerFrame(ch, frame(1)))
	assert.False(t, offerFrame(ch, frame(2)))

	require.Equal(t, 1, len(ch))
	assert.Equal(t, int64(2), (<-ch).FrameID)
}
