package errors

// Error codes returned in the "error" field of every failed response.
// Format: CATEGORY_DETAIL. The storefront maps these to localized messages.
const (
	// Auth
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthPasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	AuthWeakPassword       = "AUTH_WEAK_PASSWORD"
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"

	// Authorization
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Catalog
	ProductNotFound    = "PRODUCT_NOT_FOUND"
	ProductInvalidSort = "PRODUCT_INVALID_SORT"
	CategoryNotFound   = "CATEGORY_NOT_FOUND"
	CategoryInUse      = "CATEGORY_IN_USE"

	// Cart
	CartInvalidVariant  = "CART_INVALID_VARIANT"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"
	CartSessionRequired = "CART_SESSION_REQUIRED"
	CartUnavailable     = "CART_UNAVAILABLE"

	// Orders
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderEmptyCart         = "ORDER_EMPTY_CART"
	OrderInsufficientStock = "ORDER_INSUFFICIENT_STOCK"
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"
	OrderInvalidPayment    = "ORDER_INVALID_PAYMENT"
	OrderAddressRequired   = "ORDER_ADDRESS_REQUIRED"

	// Reviews
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewEmptyComment  = "REVIEW_EMPTY_COMMENT"

	// Addresses
	AddressNotFound = "ADDRESS_NOT_FOUND"

	// Uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
