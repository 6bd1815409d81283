// Package repository define los tipos de dominio y los contratos de
// persistencia (usuarios y credenciales de proveedores). Los drivers viven en
// internal/store/{pg,sqlite,memory}.
package repository
