package khqr

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// EMV merchant-presented QR tags used by KHQR.
const (
	tagPayloadFormat       = "00"
	tagPointOfInitiation   = "01"
	tagMerchantAccount     = "30"
	tagMerchantCategory    = "52"
	tagTransactionCurrency = "53"
	tagTransactionAmount   = "54"
	tagCountryCode         = "58"
	tagMerchantName        = "59"
	tagMerchantCity        = "60"
	tagAdditionalData      = "62"
	tagTimestamp           = "99"
	tagCRC                 = "63"

	subTagAccountID     = "00"
	subTagMerchantID    = "01"
	subTagAcquiringBank = "02"

	subTagBillNumber    = "01"
	subTagStoreLabel    = "03"
	subTagTerminalLabel = "07"

	subTagCreatedAt = "00"
	subTagExpiresAt = "01"

	payloadFormatIndicator  = "01"
	dynamicInitiation       = "12"
	defaultMerchantCategory = "5999"
	countryCambodia         = "KH"

	maxAccountIDLen = 32
	maxNameLen      = 25
	maxCityLen      = 15
	maxLabelLen     = 25
)

var (
	ErrInvalidAccountID = errs.New("bakong account id must look like name@bank")
	ErrInvalidMerchant  = errs.New("invalid merchant information")
	ErrInvalidAmount    = errs.New("amount must be positive")
	ErrFieldTooLong     = errs.New("field exceeds maximum length")
)

// MerchantInfo identifies the receiving merchant.
type MerchantInfo struct {
	AccountID     string
	MerchantID    string
	AcquiringBank string
	Name          string
	City          string
	StoreLabel    string
	TerminalLabel string
}

type PaymentInfo struct {
	Currency   order.Currency
	Amount     decimal.Decimal
	BillNumber string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Encode builds a KHQR payload string and its MD5 fingerprint.
func Encode(m MerchantInfo, p PaymentInfo) (payload, fingerprint string, err error) {
	if err := validate(m, p); err != nil {
		return "", "", err
	}

	var b strings.Builder
	b.WriteString(tlv(tagPayloadFormat, payloadFormatIndicator))
	b.WriteString(tlv(tagPointOfInitiation, dynamicInitiation))
	b.WriteString(tlv(tagMerchantAccount,
		tlv(subTagAccountID, m.AccountID)+
			optionalTLV(subTagMerchantID, m.MerchantID)+
			optionalTLV(subTagAcquiringBank, m.AcquiringBank)))
	b.WriteString(tlv(tagMerchantCategory, defaultMerchantCategory))
	b.WriteString(tlv(tagTransactionCurrency, p.Currency.NumericCode()))
	b.WriteString(tlv(tagTransactionAmount, formatAmount(p.Currency, p.Amount)))
	b.WriteString(tlv(tagCountryCode, countryCambodia))
	b.WriteString(tlv(tagMerchantName, m.Name))
	b.WriteString(tlv(tagMerchantCity, m.City))

	additional := optionalTLV(subTagBillNumber, p.BillNumber) +
		optionalTLV(subTagStoreLabel, m.StoreLabel) +
		optionalTLV(subTagTerminalLabel, m.TerminalLabel)
	if additional != "" {
		b.WriteString(tlv(tagAdditionalData, additional))
	}

	b.WriteString(tlv(tagTimestamp,
		tlv(subTagCreatedAt, strconv.FormatInt(p.CreatedAt.UnixMilli(), 10))+
			tlv(subTagExpiresAt, strconv.FormatInt(p.ExpiresAt.UnixMilli(), 10))))

	// The CRC covers everything up to and including its own tag and length.
	b.WriteString(tagCRC + "04")
	b.WriteString(fmt.Sprintf("%04X", crc16(b.String())))

	payload = b.String()
	sum := md5.Sum([]byte(payload))
	return payload, hex.EncodeToString(sum[:]), nil
}

func validate(m MerchantInfo, p PaymentInfo) error {
	if m.AccountID == "" || !strings.Contains(m.AccountID, "@") {
		return ErrInvalidAccountID
	}
	if m.Name == "" || m.City == "" {
		return ErrInvalidMerchant
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"account id", m.AccountID, maxAccountIDLen},
		{"merchant id", m.MerchantID, maxAccountIDLen},
		{"acquiring bank", m.AcquiringBank, maxAccountIDLen},
		{"merchant name", m.Name, maxNameLen},
		{"merchant city", m.City, maxCityLen},
		{"store label", m.StoreLabel, maxLabelLen},
		{"terminal label", m.TerminalLabel, maxLabelLen},
		{"bill number", p.BillNumber, maxLabelLen},
	}
	for _, l := range limits {
		if len(l.value) > l.max {
			return errs.Wrapf(ErrFieldTooLong, "%s", l.field)
		}
	}
	return nil
}

func formatAmount(c order.Currency, amount decimal.Decimal) string {
	return amount.StringFixed(c.Scale())
}

func tlv(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

func optionalTLV(tag, value string) string {
	if value == "" {
		return ""
	}
	return tlv(tag, value)
}

// crc16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF) as required by EMV QR.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
