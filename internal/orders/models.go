package orders

import "time"

// Semua nominal dalam rupiah bulat (int), tanpa desimal.

// CartItem adalah satu baris keranjang milik sesi belanja. Ephemeral:
// dibuat saat shopper menambah produk, hilang saat keranjang dibersihkan
// atau checkout selesai.
type CartItem struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Price                 int    `json:"price"`
	PromoPrice            *int   `json:"promoPrice,omitempty"`
	Tier                  string `json:"tier"`
	InstanceID            string `json:"instanceId,omitempty"`
	BriefDetails          string `json:"briefDetails,omitempty"`
	GoogleDriveAssetLinks string `json:"googleDriveAssetLinks,omitempty"`
	Width                 *int   `json:"width,omitempty"`
	Height                *int   `json:"height,omitempty"`
	Unit                  string `json:"unit,omitempty"`
}

// EffectivePrice: promoPrice menang kalau ada.
func (c CartItem) EffectivePrice() int {
	if c.PromoPrice != nil {
		return *c.PromoPrice
	}
	return c.Price
}

// Brief adalah spesifikasi desain satu line item. instanceId unik di dalam
// satu order; kalau client tidak mengirim, digenerate
// <productId>-<millis>-<posisi>.
type Brief struct {
	InstanceID            string `json:"instanceId" validate:"required"`
	ProductID             string `json:"productId" validate:"required"`
	ProductName           string `json:"productName" validate:"required"`
	Tier                  string `json:"tier" validate:"required"`
	BriefDetails          string `json:"briefDetails" validate:"required,min=10"`
	GoogleDriveAssetLinks string `json:"googleDriveAssetLinks,omitempty" validate:"omitempty,url"`
	Width                 *int   `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height                *int   `json:"height,omitempty" validate:"omitempty,gt=0"`
	Unit                  string `json:"unit,omitempty"`
	// Harga efektif item saat checkout, untuk ringkasan pelacakan.
	Price int `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// StatusEntry adalah satu baris timeline status. History append-only:
// entry lama tidak pernah dimutasi atau ditimpa.
type StatusEntry struct {
	Status      Status    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// Order adalah bentuk kanonis satu pesanan. Semua payload wire yang
// bentuknya tidak pasti harus dinormalisasi ke struct ini dulu sebelum
// disentuh logika bisnis.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Tier        string `json:"tier"`

	Briefs []Brief `json:"briefs"`

	Status  Status `json:"status"`
	Version int64  `json:"version"`

	Subtotal    int `json:"subtotal"`
	HandlingFee int `json:"handlingFee"`
	UniqueCode  int `json:"uniqueCode"`
	TotalAmount int `json:"totalAmount"`

	StatusHistory []StatusEntry `json:"statusHistory"`

	CustomerName     string  `json:"customerName,omitempty"`
	CustomerEmail    string  `json:"customerEmail,omitempty"`
	CustomerPhone    *string `json:"customerPhone,omitempty"`
	CustomerTelegram *string `json:"customerTelegram,omitempty"`
	CustomerAddress  *string `json:"customerAddress,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}

// Invariant harga: totalAmount == subtotal + handlingFee + uniqueCode.
func (o Order) TotalConsistent() bool {
	return o.TotalAmount == o.Subtotal+o.HandlingFee+o.UniqueCode
}

// LineItem adalah ringkasan item untuk tampilan pelacakan.
type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// OrderDetails adalah snapshot penuh untuk halaman pelacakan: superset
// Order plus alamat kirim, estimasi selesai, dan line items.
type OrderDetails struct {
	Order
	ShippingAddress   string     `json:"shippingAddress,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Items             []LineItem `json:"items,omitempty"`
}

// CreatePayload adalah payload pembuatan order yang divalidasi penuh
// sebelum network call apa pun. Gagal skema = seluruh tier batal.
type CreatePayload struct {
	Tier          string  `json:"tier" validate:"required"`
	Briefs        []Brief `json:"briefs" validate:"required,min=1,dive"`
	Subtotal      int     `json:"subtotal" validate:"gte=0"`
	HandlingFee   int     `json:"handlingFee" validate:"gte=0"`
	UniqueCode    int     `json:"uniqueCode" validate:"gte=100,lte=999"`
	TotalAmount   int     `json:"totalAmount" validate:"gte=0"`
	Status        Status  `json:"status" validate:"required,orderstatus"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
}

// CustomerInfo adalah data kontak yang diisi saat checkout.
type CustomerInfo struct {
	Name     string `json:"name" validate:"required,min=3"`
	Phone    string `json:"phone" validate:"required,min=10"`
	Telegram string `json:"telegram" validate:"required,min=3,startswith=@"`
	Address  string `json:"address,omitempty" validate:"omitempty,min=10"`
}
