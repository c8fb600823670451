package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"firewatch-worker-go/internal/models"
)

// Color-heuristic thresholds. Tuned to exclude red LEDs and warm
// lighting: real flames are saturated orange/yellow AND ultra bright.
const (
	brightnessFloor = 240  // minimum gray value for the brightness mask
	minFireRatio    = 0.02 // fire pixels must cover at least 2% of the frame
	minAspectRatio  = 0.5  // flames have vertical extent, light bars do not
)

// colorClassify is the deterministic fallback fire detector. It runs an
// HSV range analysis on the raw BGR frame and requires a single bright,
// clustered, flame-shaped region before reporting a detection.
func colorClassify(frame *models.RawFrame) (*Classification, error) {
	img, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame data: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return &Classification{}, nil
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	// Orange flames are the primary indicator, yellow secondary. Pure
	// red is only accepted at very high saturation and brightness so
	// red LEDs and warning lights do not trigger.
	maskOrange := gocv.NewMat()
	defer maskOrange.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(8, 150, 230, 0), gocv.NewScalar(20, 255, 255, 0), &maskOrange)

	maskYellow := gocv.NewMat()
	defer maskYellow.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(20, 120, 240, 0), gocv.NewScalar(30, 255, 255, 0), &maskYellow)

	maskRed := gocv.NewMat()
	defer maskRed.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(0, 200, 230, 0), gocv.NewScalar(6, 255, 255, 0), &maskRed)

	fireMask := gocv.NewMat()
	defer fireMask.Close()
	gocv.BitwiseOr(maskYellow, maskRed, &fireMask)
	gocv.BitwiseOr(maskOrange, fireMask, &fireMask)

	// Fire must also be intensely bright.
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, brightnessFloor, 255, gocv.ThresholdBinary)
	gocv.BitwiseAnd(fireMask, bright, &fireMask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(fireMask, &fireMask, gocv.MorphOpen, kernel)
	gocv.Dilate(fireMask, &fireMask, kernel)

	totalPixels := float64(frame.Width * frame.Height)
	fireRatio := float64(gocv.CountNonZero(fireMask)) / totalPixels
	if fireRatio <= minFireRatio {
		return &Classification{}, nil
	}

	// The fire pixels must be clustered, not scattered.
	contours := gocv.FindContours(fireMask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return &Classification{}, nil
	}

	largestIdx := 0
	largestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > largestArea {
			largestArea = area
			largestIdx = i
		}
	}

	if largestArea/totalPixels <= minFireRatio {
		return &Classification{}, nil
	}

	rect := gocv.BoundingRect(contours.At(largestIdx))
	if rect.Dx() == 0 {
		return &Classification{}, nil
	}
	aspect := float64(rect.Dy()) / float64(rect.Dx())
	if aspect <= minAspectRatio {
		return &Classification{}, nil
	}

	confidence := fireRatio * 20
	if confidence > 1.0 {
		confidence = 1.0
	}

	return &Classification{
		Detected:   true,
		FireType:   models.FireTypeFire,
		Confidence: confidence,
		BBox: &models.BBox{
			X1: rect.Min.X, Y1: rect.Min.Y,
			X2: rect.Max.X, Y2: rect.Max.Y,
		},
	}, nil
}

// EncodeJPEG compresses a raw BGR frame for transport to the detector
// services.
func EncodeJPEG(frame *models.RawFrame, quality int) ([]byte, error) {
	img, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame data: %w", err)
	}
	defer img.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}
