package domain

import (
	"fmt"
	"time"
)

// Radio access technologies accepted by the collection service.
const (
	RadioGSM   = "GSM"
	RadioUMTS  = "UMTS"
	RadioLTE   = "LTE"
	RadioCDMA  = "CDMA"
	RadioNR    = "NR"
	RadioOther = ""
)

// Measurement is a single observation of a serving or neighbouring cell.
type Measurement struct {
	// ID is assigned by the local buffer; it is not uploaded.
	ID string

	MCC    int
	MNC    int
	LAC    int
	CellID int64

	Longitude float64
	Latitude  float64

	// Signal is the received signal strength in dBm.
	Signal int

	MeasuredAt time.Time

	// Rating is the GPS accuracy in metres.
	Rating float64

	// Speed in m/s and Direction in degrees.
	Speed     float64
	Direction float64

	// Radio is the access technology, one of the Radio* constants.
	Radio string
}

// Validate checks that the measurement is within the ranges the service accepts.
func (m Measurement) Validate() error {
	switch {
	case m.MCC < 0 || m.MCC > 999:
		return fmt.Errorf("%w: mcc %d", ErrInvalidMeasurement, m.MCC)
	case m.MNC < 0 || m.MNC > 999:
		return fmt.Errorf("%w: mnc %d", ErrInvalidMeasurement, m.MNC)
	case m.LAC < 0:
		return fmt.Errorf("%w: lac %d", ErrInvalidMeasurement, m.LAC)
	case m.CellID < 0:
		return fmt.Errorf("%w: cell id %d", ErrInvalidMeasurement, m.CellID)
	case m.Latitude < -90 || m.Latitude > 90:
		return fmt.Errorf("%w: latitude %f", ErrInvalidMeasurement, m.Latitude)
	case m.Longitude < -180 || m.Longitude > 180:
		return fmt.Errorf("%w: longitude %f", ErrInvalidMeasurement, m.Longitude)
	case m.MeasuredAt.IsZero():
		return fmt.Errorf("%w: missing measurement time", ErrInvalidMeasurement)
	}
	switch m.Radio {
	case RadioGSM, RadioUMTS, RadioLTE, RadioCDMA, RadioNR, RadioOther:
	default:
		return fmt.Errorf("%w: radio %q", ErrInvalidMeasurement, m.Radio)
	}
	return nil
}
