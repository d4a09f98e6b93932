// errno.go - Fehlercodes des nativen Fehlerregisters
package engine

import "fmt"

// ErrorCode mirrors the values of the native fann_errno_enum.
type ErrorCode int

const (
	ErrNone                    ErrorCode = iota // FANN_E_NO_ERROR
	ErrCantOpenConfigR                          // FANN_E_CANT_OPEN_CONFIG_R
	ErrCantOpenConfigW                          // FANN_E_CANT_OPEN_CONFIG_W
	ErrWrongConfigVersion                       // FANN_E_WRONG_CONFIG_VERSION
	ErrCantReadConfig                           // FANN_E_CANT_READ_CONFIG
	ErrCantReadNeuron                           // FANN_E_CANT_READ_NEURON
	ErrCantReadConnections                      // FANN_E_CANT_READ_CONNECTIONS
	ErrWrongNumConnections                      // FANN_E_WRONG_NUM_CONNECTIONS
	ErrCantOpenTDW                              // FANN_E_CANT_OPEN_TD_W
	ErrCantOpenTDR                              // FANN_E_CANT_OPEN_TD_R
	ErrCantReadTD                               // FANN_E_CANT_READ_TD
	ErrCantAllocateMem                          // FANN_E_CANT_ALLOCATE_MEM
	ErrCantTrainActivation                      // FANN_E_CANT_TRAIN_ACTIVATION
	ErrCantUseActivation                        // FANN_E_CANT_USE_ACTIVATION
	ErrTrainDataMismatch                        // FANN_E_TRAIN_DATA_MISMATCH
	ErrCantUseTrainAlg                          // FANN_E_CANT_USE_TRAIN_ALG
	ErrTrainDataSubset                          // FANN_E_TRAIN_DATA_SUBSET
	ErrIndexOutOfBound                          // FANN_E_INDEX_OUT_OF_BOUND
	ErrScaleNotPresent                          // FANN_E_SCALE_NOT_PRESENT
	ErrInputNoMatch                             // FANN_E_INPUT_NO_MATCH
	ErrOutputNoMatch                            // FANN_E_OUTPUT_NO_MATCH
	ErrWrongParametersForCreate                 // FANN_E_WRONG_PARAMETERS_FOR_CREATE
)

// IsIO reports whether the code stems from opening a file.
func (c ErrorCode) IsIO() bool {
	switch c {
	case ErrCantOpenConfigR, ErrCantOpenConfigW, ErrCantOpenTDW, ErrCantOpenTDR:
		return true
	}
	return false
}

// IsParse reports whether the code stems from reading a malformed file.
func (c ErrorCode) IsParse() bool {
	switch c {
	case ErrWrongConfigVersion, ErrCantReadConfig, ErrCantReadNeuron,
		ErrCantReadConnections, ErrWrongNumConnections, ErrCantReadTD:
		return true
	}
	return false
}

// Error is returned by the constructors of an Engine, which have no network whose
// register could hold the failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("FANN error %d: %s", int(e.Code), e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
