package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the standard response wrapper: {success, data} on the happy
// path, {success, error} with a Persian user-facing message otherwise
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// User-facing messages, surfaced verbatim by the storefront UI
const (
	MsgInternalError     = "خطای داخلی سرور. لطفا دوباره تلاش کنید"
	MsgInvalidRequest    = "درخواست نامعتبر است"
	MsgInvalidProductID  = "شناسه محصول نامعتبر است"
	MsgProductNotFound   = "محصول یافت نشد"
	MsgVariantNotFound   = "این ترکیب سایز و رنگ موجود نیست"
	MsgCouponNotFound    = "کد تخفیف یافت نشد"
	MsgCouponExhausted   = "ظرفیت استفاده از این کد تخفیف تکمیل شده است"
	MsgInsufficientStock = "موجودی کافی نیست"
	MsgInvalidQuantity   = "تعداد باید بزرگتر از صفر باشد"
	MsgProductInactive   = "این محصول در حال حاضر قابل خرید نیست"
	MsgCartItemNotFound  = "این مورد در سبد خرید شما نیست"
	MsgEmptyCart         = "سبد خرید خالی است"
	MsgCartChanged       = "سبد خرید شما تغییر کرده است. لطفا دوباره تلاش کنید"
	MsgOrderNotFound     = "سفارش یافت نشد"
	MsgCannotCancel      = "این سفارش قابل لغو نیست"
	MsgInvalidTransition = "این تغییر وضعیت مجاز نیست"
	MsgUnauthorized      = "ابتدا وارد حساب کاربری خود شوید"
	MsgForbidden         = "شما به این بخش دسترسی ندارید"
	MsgInvalidPhone      = "شماره موبایل نامعتبر است"
	MsgOTPThrottled      = "کد تایید به تازگی ارسال شده است. کمی صبر کنید"
	MsgOTPInvalid        = "کد تایید نامعتبر یا منقضی شده است"
	MsgTooManyAttempts   = "تعداد تلاش‌ها بیش از حد مجاز است. کد جدید درخواست کنید"
	MsgInvalidRating     = "امتیاز باید بین ۱ تا ۵ باشد"
	MsgDuplicateReview   = "شما قبلا برای این محصول نظر ثبت کرده‌اید"
	MsgCategoryRequired  = "اطلاعات دسته‌بندی کامل نیست"
	MsgInvalidProduct    = "اطلاعات محصول نامعتبر است"
)

// WriteData writes a success envelope
func WriteData(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Success: true, Data: data}); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error envelope with a user-facing message
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Success: false, Error: message}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}
