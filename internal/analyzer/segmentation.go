package analyzer

import (
	"unicode/utf8"

	"github.com/zombar/docready/internal/models"
)

// AnalyzeSegmentation checks each segment's length against the service
// limit and computes aggregate size statistics. Lengths are rune counts.
// Segmentation is optimal when no segment exceeds the limit and the average
// length stays under 80% of it. An empty segment list yields an all-zero
// report that neither requires splitting nor blocks readiness.
func AnalyzeSegmentation(segments []models.Segment) models.SegmentationReport {
	report := models.SegmentationReport{
		TotalSegments:         len(segments),
		OptimalForTranslation: true,
	}

	if len(segments) == 0 {
		return report
	}

	total := 0
	for _, segment := range segments {
		length := utf8.RuneCountInString(segment.Text)
		total += length

		if length <= MaxSegmentLength {
			report.SegmentsWithinLimit++
		} else {
			report.SegmentsExceedingLimit++
		}
		if length > report.MaxSegmentLength {
			report.MaxSegmentLength = length
		}
	}

	report.AverageSegmentLength = float64(total) / float64(len(segments))
	report.RequiresSegmentation = report.SegmentsExceedingLimit > 0
	report.OptimalForTranslation = report.SegmentsExceedingLimit == 0 &&
		report.AverageSegmentLength < MaxSegmentLength*optimalAverageRatio

	return report
}
