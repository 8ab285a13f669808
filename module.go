package inject

// Module contributes bindings to a Binder.
type Module func(*Binder)

// NewModule creates a named module from other modules. Modules are a way to
// group related bindings together; errors raised while a named module is
// applied are wrapped in a ModuleError carrying its name.
//
// Example:
//
//	var DatabaseModule = inject.NewModule("database",
//	    func(b *inject.Binder) {
//	        inject.Bind[*sql.DB](b).ToConstructor(OpenDatabase).In(inject.Singleton)
//	        inject.Bind[UserRepository](b).To(inject.KeyOf[*SQLUserRepository]())
//	    },
//	)
//
//	var AppModule = inject.NewModule("app",
//	    DatabaseModule,
//	    CacheModule,
//	    func(b *inject.Binder) {
//	        b.Constructor(NewUserService)
//	    },
//	)
func NewModule(name string, modules ...Module) Module {
	return func(b *Binder) {
		b.modules = append(b.modules, name)
		defer func() {
			b.modules = b.modules[:len(b.modules)-1]
		}()

		b.Install(modules...)
	}
}

// Instance returns a module binding T to a fixed value.
func Instance[T any](v T, q ...Qualifier) Module {
	return func(b *Binder) {
		Bind[T](b, q...).ToInstance(v)
	}
}

// SingletonConstructor returns a module binding T to constructor in
// Singleton scope.
func SingletonConstructor[T any](constructor any, q ...Qualifier) Module {
	return func(b *Binder) {
		Bind[T](b, q...).ToConstructor(constructor).In(Singleton)
	}
}

// Constructor returns a module binding T to constructor with
// no scope.
func Constructor[T any](constructor any, q ...Qualifier) Module {
	return func(b *Binder) {
		Bind[T](b, q...).ToConstructor(constructor)
	}
}
