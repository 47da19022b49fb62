package domain

// Display labels are kept apart from Role comparison so that gating never
// depends on the UI locale.
var roleDisplay = map[string]map[Role]string{
	"en": {
		RoleAdministrator: "Administrator",
		RoleSalesperson:   "Salesperson",
		RoleStorekeeper:   "Storekeeper",
		RoleAccountant:    "Accountant",
		RoleUnknown:       "Unknown",
	},
	"ru": {
		RoleAdministrator: "Администратор",
		RoleSalesperson:   "Продавец",
		RoleStorekeeper:   "Кладовщик",
		RoleAccountant:    "Бухгалтер",
		RoleUnknown:       "Неизвестно",
	},
	"uz": {
		RoleAdministrator: "Administrator",
		RoleSalesperson:   "Sotuvchi",
		RoleStorekeeper:   "Omborchi",
		RoleAccountant:    "Hisobchi",
		RoleUnknown:       "Noma'lum",
	},
}

// DisplayName returns the label for locale, falling back to English
func (r Role) DisplayName(locale string) string {
	labels, ok := roleDisplay[locale]
	if !ok {
		labels = roleDisplay["en"]
	}
	if label, ok := labels[r]; ok {
		return label
	}
	return labels[RoleUnknown]
}
