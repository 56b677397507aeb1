package domain

// GC представляет именованную запись, принадлежащую одному пользователю.
// Соответствует таблице 'gcs' в базе данных.
type GC struct {
	ID      uint   `json:"id" db:"id" gorm:"primaryKey"`
	Name    string `json:"name" db:"name" gorm:"size:100;not null"`
	OwnerID uint   `json:"owner_id" db:"owner_id" gorm:"index;not null"`
	Owner   *User  `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

func (GC) TableName() string {
	return "gcs"
}

// GCPatch описывает частичное обновление GC.
type GCPatch struct {
	Name *string
}

func (p GCPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	return fields
}
