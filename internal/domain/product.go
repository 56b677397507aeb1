package domain

// Product представляет самостоятельную запись о товаре без владельца.
// Соответствует таблице 'products' в базе данных.
type Product struct {
	ID       uint    `json:"id" db:"id" gorm:"primaryKey"`
	Name     string  `json:"name" db:"name" gorm:"size:100;not null"`
	Category string  `json:"category" db:"category" gorm:"size:50;not null;default:''"`
	Price    float64 `json:"price" db:"price" gorm:"type:decimal(12,2);not null;default:0"`
	Stock    int     `json:"stock" db:"stock" gorm:"not null;default:0"`
	ImageURL string  `json:"image_url" db:"image_url" gorm:"size:500;not null;default:''"`
}

func (Product) TableName() string {
	return "products"
}

// ProductPatch описывает частичное обновление товара.
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Stock    *int
	ImageURL *string
}

func (p ProductPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Stock != nil {
		fields["stock"] = *p.Stock
	}
	if p.ImageURL != nil {
		fields["image_url"] = *p.ImageURL
	}
	return fields
}
